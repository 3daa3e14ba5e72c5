package pool

import (
	"testing"

	"github.com/depsolver/depsolver/pkg/pkgrepo"
	"github.com/depsolver/depsolver/pkg/version"
)

func mkrepo(pkgs ...*pkgrepo.Package) *pkgrepo.Repository {
	r := pkgrepo.New()
	for _, p := range pkgs {
		r.Add(p)
	}
	return r
}

func mkpkg(name, v string) *pkgrepo.Package {
	return &pkgrepo.Package{Name: name, Version: version.MustSemVer(v)}
}

func TestPoolIDsAreDenseFromOne(t *testing.T) {
	repo := mkrepo(mkpkg("mkl", "10.3.1"), mkpkg("numpy", "1.9.2"))
	p := New(repo)

	ids := p.IDs()
	if len(ids) != 2 {
		t.Fatalf("len(IDs()) = %d, want 2", len(ids))
	}
	for i, id := range ids {
		if id != i+1 {
			t.Errorf("IDs()[%d] = %d, want %d", i, id, i+1)
		}
	}
}

func TestPoolRepositoryPriority(t *testing.T) {
	hi := mkrepo(mkpkg("mkl", "10.3.1"))
	lo := mkrepo(mkpkg("mkl", "10.3.1"), mkpkg("mkl", "10.3.2"))

	p := New(hi, lo)

	id, ok := p.IDOf(mkpkg("mkl", "10.3.1"))
	if !ok || id != 1 {
		t.Fatalf("expected 10.3.1 interned first from the higher-priority repo, got id=%d ok=%v", id, ok)
	}

	ids := p.IDsWithName("mkl")
	if len(ids) != 2 {
		t.Fatalf("expected 2 distinct mkl ids, got %d", len(ids))
	}
	if p.PackageOf(ids[0]).Version.String() != "10.3.2" {
		t.Errorf("expected newest-first ordering, got %v", p.PackageOf(ids[0]))
	}
}

func TestIDsMatchingViaProvides(t *testing.T) {
	mkl := mkpkg("mkl-variant", "1.0.0")
	mkl.Provides = []version.Requirement{version.Named("mkl")}
	repo := mkrepo(mkl)
	p := New(repo)

	req, _ := version.ParseRequirement("mkl")
	ids := p.IDsMatching(req)
	if len(ids) != 1 || p.PackageOf(ids[0]).Name != "mkl-variant" {
		t.Errorf("expected provides-based match, got %v", ids)
	}
}
