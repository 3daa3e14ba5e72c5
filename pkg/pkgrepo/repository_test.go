package pkgrepo

import (
	"testing"

	"github.com/depsolver/depsolver/pkg/version"
)

func pkg(name, v string) *Package {
	return &Package{Name: name, Version: version.MustSemVer(v)}
}

func TestRepositoryCollapsesDuplicates(t *testing.T) {
	r := New()
	if !r.Add(pkg("mkl", "10.3.1")) {
		t.Fatalf("expected first add to succeed")
	}
	if r.Add(pkg("mkl", "10.3.1")) {
		t.Fatalf("expected duplicate identity to be rejected")
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
}

func TestRepositoryNewestFirst(t *testing.T) {
	r := New()
	r.Add(pkg("mkl", "10.3.1"))
	r.Add(pkg("mkl", "10.3.3"))
	r.Add(pkg("mkl", "10.3.2"))

	got := r.PackagesWithName("mkl")
	want := []string{"10.3.3", "10.3.2", "10.3.1"}
	for i, w := range want {
		if got[i].Version.String() != w {
			t.Errorf("position %d = %s, want %s", i, got[i].Version, w)
		}
	}
}

func TestPackagesMatching(t *testing.T) {
	r := New()
	r.Add(pkg("mkl", "10.3.1"))
	r.Add(pkg("mkl", "10.3.2"))

	req, _ := version.ParseRequirement("mkl>=10.3.2")
	got := r.PackagesMatching(req)
	if len(got) != 1 || got[0].Version.String() != "10.3.2" {
		t.Errorf("PackagesMatching = %v, want [10.3.2]", got)
	}
}
