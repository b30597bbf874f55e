// Package exec runs external toolchain commands for weaver.
//
// Executor wraps os/exec with cancellation, working directory and extra
// environment. Output can be streamed with a per-step prefix, or hidden
// behind a spinner and attached to the error when the command fails:
//
//	e := exec.NewExecutor(&exec.Options{Dir: projectDir})
//	err := e.RunWithSpinner(ctx, "Building", "dotnet", "build")
//
// Tests substitute the command constructor with the helper-process pattern.
package exec
