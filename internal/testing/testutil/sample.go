package testutil

import (
	"testing"

	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
	"github.com/simonhull/firebird-suite/weaver/internal/selection"
)

// SampleCriteria selects the blank MVVMBasic project of SampleCatalog.
var SampleCriteria = selection.Criteria{
	ProjectType: "Blank",
	Framework:   "MVVMBasic",
	Platform:    "Uwp",
	Language:    "C#",
}

const sampleApp = `namespace Param_RootNamespace
{
    public sealed partial class App
    {
        private void OnLaunched()
        {
            //^^ OnLaunched
        }
    }
}
`

const sampleShell = `namespace Param_RootNamespace.ViewModels
{
    public class ShellViewModel
    {
        public void RegisterPages()
        {
            //^^ Pages
        }
    }
}
`

const sampleShellXaml = `<Page x:Class="Param_RootNamespace.Views.ShellPage">
    <NavigationView>
        <!--^^ MenuItems -->
    </NavigationView>
</Page>
`

const blankPostaction = `namespace Param_RootNamespace.ViewModels
{
    public class ShellViewModel
    {
        public void RegisterPages()
        {
            //{[{ Pages
            Register<BlankViewPage>("BlankView");
            //}]}
        }
    }
}
`

const blankXamlPostaction = `<Page>
    <NavigationView>
        <!--{[{ MenuItems -->
        <NavigationViewItem Content="BlankView" />
        <!--}]}-->
    </NavigationView>
</Page>
`

const mapPostaction = `//{[{ Pages
            Register<MapViewPage>("MapView");
//}]}
`

const settingsAppPostaction = `//{[{ OnLaunched
            await Singleton<SettingsService>.Instance.LoadAsync();
//}]}
`

// SampleRecords returns a small catalog modelled on a desktop app generator:
// two projects, pages, features, an exclusive identity group, a hidden
// service and a composition.
func SampleRecords() []catalog.TemplateRecord {
	return []catalog.TemplateRecord{
		Rec("Proj.Blank", catalog.TypeProject,
			Identity("wts.Proj.Blank"),
			ProjectTypes("Blank"),
			Frameworks("MVVMBasic", "Prism"),
			File("App.xaml.cs", sampleApp),
			File("ViewModels/ShellViewModel.cs", sampleShell),
			File("Views/ShellPage.xaml", sampleShellXaml),
		),
		Rec("Proj.SplitView", catalog.TypeProject,
			Identity("wts.Proj.SplitView"),
			ProjectTypes("SplitView"),
			File("App.xaml.cs", sampleApp),
		),
		Rec("Page.Blank", catalog.TypePage,
			Identity("wts.Page.Blank"),
			RightClick(),
			SourceName("BlankView"),
			File("Views/BlankViewPage.xaml.cs", "namespace Param_RootNamespace.Views { public sealed partial class BlankViewPage {} }\n"),
			File("ViewModels/ShellViewModel_postaction.cs", blankPostaction),
			File("Views/ShellPage_postaction.xaml", blankXamlPostaction),
		),
		Rec("Page.Map", catalog.TypePage,
			Identity("wts.Page.Map"),
			RightClick(),
			SourceName("MapView"),
			Deps("wts.Serv.Location"),
			File("Views/MapViewPage.xaml.cs", "namespace Param_RootNamespace.Views { public sealed partial class MapViewPage {} }\n"),
			File("ViewModels/ShellViewModel_postaction.cs", mapPostaction),
		),
		Rec("Serv.Location", catalog.TypeService,
			Identity("wts.Serv.Location"),
			Hidden(),
			File("Services/LocationService.cs", "namespace Param_RootNamespace.Services { public class LocationService {} }\n"),
		),
		Rec("Feat.Settings", catalog.TypeFeature,
			Identity("wts.Feat.Settings"),
			RightClick(),
			File("Services/SettingsService.cs", "namespace Param_RootNamespace.Services { public class SettingsService {} }\n"),
			File("App_postaction.xaml.cs", settingsAppPostaction),
		),
		Rec("Feat.Identity.Forced", catalog.TypeFeature,
			Identity("wts.Feat.Identity.Forced"),
			Exclusive("Identity"),
			File("Services/IdentityService.cs", "public class IdentityService { /* forced */ }\n"),
		),
		Rec("Feat.Identity.Optional", catalog.TypeFeature,
			Identity("wts.Feat.Identity.Optional"),
			Exclusive("Identity"),
			File("Services/IdentityService.cs", "public class IdentityService { /* optional */ }\n"),
		),
		Rec("Comp.Settings.Prism", catalog.TypeComposition,
			Identity("wts.Comp.Settings.Prism"),
			Frameworks("Prism"),
			Filter("wts.Feat.Settings"),
			File("Services/SettingsService.Prism.cs", "// prism settings glue\n"),
		),
		Rec("Comp.Settings.MVVMBasic", catalog.TypeComposition,
			Identity("wts.Comp.Settings.MVVMBasic"),
			Frameworks("MVVMBasic"),
			Filter("wts.Feat.Settings"),
			File("Services/SettingsService.Basic.cs", "// basic settings glue\n"),
		),
	}
}

// SampleCatalog returns SampleRecords as an in-memory catalog.
func SampleCatalog(t testing.TB) *catalog.Memory {
	t.Helper()
	return MustCatalog(t, SampleRecords()...)
}
