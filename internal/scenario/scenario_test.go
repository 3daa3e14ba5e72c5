package scenario

import (
	"testing"

	"github.com/depsolver/depsolver/pkg/version"
)

func TestParsePackageSimple(t *testing.T) {
	pkg, err := ParsePackage("mkl 10.3-1")
	if err != nil {
		t.Fatalf("ParsePackage: %v", err)
	}
	if pkg.Name != "mkl" || pkg.Version.String() != "10.3-1" {
		t.Fatalf("got %s %s, want mkl 10.3-1", pkg.Name, pkg.Version)
	}
	if len(pkg.InstallRequires) != 0 {
		t.Fatalf("expected no install_requires, got %v", pkg.InstallRequires)
	}
}

func TestParsePackageDepends(t *testing.T) {
	pkg, err := ParsePackage("numpy 1.9.2-1 depends mkl==10.3-1,libgfortran^=3.0.0")
	if err != nil {
		t.Fatalf("ParsePackage: %v", err)
	}
	if len(pkg.InstallRequires) != 2 {
		t.Fatalf("expected 2 install_requires, got %d: %v", len(pkg.InstallRequires), pkg.InstallRequires)
	}
	if pkg.InstallRequires[0].Name != "mkl" || pkg.InstallRequires[1].Name != "libgfortran" {
		t.Fatalf("unexpected requirement names: %v", pkg.InstallRequires)
	}
}

func TestParsePackageConflictsAndProvides(t *testing.T) {
	pkg, err := ParsePackage("openblas 0.3.0 conflicts mkl provides blas")
	if err != nil {
		t.Fatalf("ParsePackage: %v", err)
	}
	if len(pkg.Conflicts) != 1 || pkg.Conflicts[0].Name != "mkl" {
		t.Fatalf("unexpected conflicts: %v", pkg.Conflicts)
	}
	if len(pkg.Provides) != 1 || pkg.Provides[0].Name != "blas" {
		t.Fatalf("unexpected provides: %v", pkg.Provides)
	}
}

func TestBuildScenario(t *testing.T) {
	f := &File{
		Packages: []string{
			"mkl 10.3-1",
			"libgfortran 3.0.0-2",
			"numpy 1.9.2-1 depends mkl==10.3-1,libgfortran^=3.0.0",
		},
		Installed: []string{"mkl 10.3-1"},
		Request: []RequestEntry{
			{Operation: "install", Requirement: "numpy"},
		},
	}
	repo, installed, req, err := f.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if repo.Len() != 3 {
		t.Fatalf("repo.Len() = %d, want 3", repo.Len())
	}
	if installed.Len() != 1 {
		t.Fatalf("installed.Len() = %d, want 1", installed.Len())
	}
	if len(req.Jobs) != 1 || req.Jobs[0].Requirement.Name != "numpy" {
		t.Fatalf("unexpected jobs: %v", req.Jobs)
	}
}

func TestBuildScenarioCompatibleWithMatchesBuildSuffix(t *testing.T) {
	f := &File{
		Packages: []string{
			"libgfortran 3.0.0-2",
			"numpy 1.9.2-1 depends libgfortran^=3.0.0",
		},
	}
	repo, _, _, err := f.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	numpy := repo.PackagesMatching(version.New("numpy", version.NewEqualTo(version.MustSemVer("1.9.2-1"))))
	if len(numpy) != 1 {
		t.Fatalf("expected exactly one numpy package, got %d", len(numpy))
	}
	dep := numpy[0].InstallRequires[0]
	matches := repo.PackagesMatching(dep)
	if len(matches) != 1 || matches[0].Version.String() != "3.0.0-2" {
		t.Fatalf("libgfortran^=3.0.0 should match libgfortran 3.0.0-2, got %v", matches)
	}
}

func TestBuildScenarioRejectsUndeclaredInstalled(t *testing.T) {
	f := &File{
		Packages:  []string{"mkl 10.3-1"},
		Installed: []string{"mkl 10.3-2"},
	}
	if _, _, _, err := f.Build(); err == nil {
		t.Fatalf("expected an error for an installed package not in packages")
	}
}
