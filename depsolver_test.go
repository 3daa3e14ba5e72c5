package depsolver

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/depsolver/depsolver/internal/pool"
	"github.com/depsolver/depsolver/internal/txn"
	"github.com/depsolver/depsolver/pkg/pkgrepo"
	"github.com/depsolver/depsolver/pkg/solveerr"
	"github.com/depsolver/depsolver/pkg/version"
)

func mkPkg(name, ver string, requires ...version.Requirement) *pkgrepo.Package {
	return &pkgrepo.Package{Name: name, Version: version.MustSemVer(ver), InstallRequires: requires}
}

func installJob(name string) Job {
	return Job{Kind: Install, Requirement: version.Named(name)}
}

func TestSimpleInstall(t *testing.T) {
	repo := pkgrepo.New()
	repo.Add(mkPkg("mkl", "10.3.1"))
	p := pool.New(repo)

	tr, err := Solve(p, pkgrepo.New(), NewRequest(installJob("mkl")), SolveOptions{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(tr.Operations) != 1 || tr.Operations[0].Kind != txn.Install || tr.Operations[0].Pkg.Name != "mkl" {
		t.Fatalf("unexpected operations: %+v", tr.Operations)
	}
}

func TestMultipleInstallsSortedLexicographically(t *testing.T) {
	repo := pkgrepo.New()
	repo.Add(mkPkg("mkl", "10.3.1"))
	repo.Add(mkPkg("libgfortran", "3.0.2"))
	p := pool.New(repo)

	req := NewRequest(installJob("mkl"), installJob("libgfortran"))
	tr, err := Solve(p, pkgrepo.New(), req, SolveOptions{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(tr.Operations) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(tr.Operations))
	}
	if tr.Operations[0].Pkg.Name != "libgfortran" || tr.Operations[1].Pkg.Name != "mkl" {
		t.Fatalf("expected libgfortran before mkl (lexicographic), got %s then %s",
			tr.Operations[0].Pkg.Name, tr.Operations[1].Pkg.Name)
	}
}

func TestDependencyPull(t *testing.T) {
	repo := pkgrepo.New()
	repo.Add(mkPkg("mkl", "10.3.1"))
	repo.Add(mkPkg("libgfortran", "3.0.2"))
	repo.Add(mkPkg("numpy", "1.9.2",
		version.New("mkl", version.NewEqualTo(version.MustSemVer("10.3.1"))),
		version.New("libgfortran", version.NewCompatibleWith(version.MustSemVer("3.0.0"))),
	))
	p := pool.New(repo)

	tr, err := Solve(p, pkgrepo.New(), NewRequest(installJob("numpy")), SolveOptions{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(tr.Operations) != 3 {
		t.Fatalf("expected 3 operations (numpy + 2 deps), got %d: %+v", len(tr.Operations), tr.Operations)
	}
	names := []string{tr.Operations[0].Pkg.Name, tr.Operations[1].Pkg.Name, tr.Operations[2].Pkg.Name}
	if names[2] != "numpy" {
		t.Fatalf("expected numpy last (topological order), got order %v", names)
	}
	if names[0] != "libgfortran" || names[1] != "mkl" {
		t.Fatalf("expected libgfortran, mkl before numpy lexicographically, got %v", names)
	}
}

func TestAlreadyInstalledNoOp(t *testing.T) {
	repo := pkgrepo.New()
	v1 := mkPkg("mkl", "10.3.1")
	v2 := mkPkg("mkl", "10.3.2")
	repo.Add(v1)
	repo.Add(v2)
	p := pool.New(repo)

	installed := pkgrepo.New()
	installed.Add(v1)

	tr, err := Solve(p, installed, NewRequest(installJob("mkl")), SolveOptions{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(tr.Operations) != 0 {
		t.Fatalf("expected no-op, got %+v", tr.Operations)
	}
}

func TestUpdatePathCollapsesToUpdate(t *testing.T) {
	repo := pkgrepo.New()
	v1 := mkPkg("mkl", "10.3.1")
	v2 := mkPkg("mkl", "10.3.2")
	repo.Add(v1)
	repo.Add(v2)
	p := pool.New(repo)

	installed := pkgrepo.New()
	installed.Add(v1)

	req, err := version.ParseRequirement("mkl>10.3.1")
	if err != nil {
		t.Fatalf("ParseRequirement: %v", err)
	}
	tr, err := Solve(p, installed, NewRequest(Job{Kind: Install, Requirement: req}), SolveOptions{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(tr.Operations) != 2 {
		t.Fatalf("expected remove+install, got %+v", tr.Operations)
	}
	if len(tr.PrettyOperations) != 1 || tr.PrettyOperations[0].Kind != txn.UpdateKind {
		t.Fatalf("expected a single collapsed Update, got %+v", tr.PrettyOperations)
	}
	if tr.PrettyOperations[0].New.Version.String() != "10.3.2" || tr.PrettyOperations[0].Old.Version.String() != "10.3.1" {
		t.Fatalf("unexpected update pair: %+v", tr.PrettyOperations[0])
	}
}

func TestUnsatisfiableMissingTransitive(t *testing.T) {
	repo := pkgrepo.New()
	repo.Add(mkPkg("mkl", "10.3.1", version.New("missing")))
	repo.Add(mkPkg("numpy", "2.0.0", version.New("mkl")))
	repo.Add(mkPkg("numpy", "1.9.2"))
	p := pool.New(repo)

	req, err := version.ParseRequirement("numpy>=2.0.0")
	if err != nil {
		t.Fatalf("ParseRequirement: %v", err)
	}
	_, err = Solve(p, pkgrepo.New(), NewRequest(Job{Kind: Install, Requirement: req}), SolveOptions{})
	if err == nil {
		t.Fatalf("expected an unsatisfiable result")
	}
	var satErr *solveerr.SatisfiabilityError
	if !errors.As(err, &satErr) {
		t.Fatalf("expected *solveerr.SatisfiabilityError, got %T: %v", err, err)
	}
}

func TestStrictModeMissingInstallRequires(t *testing.T) {
	repo := pkgrepo.New()
	repo.Add(mkPkg("mkl", "10.3.1", version.New("missing")))
	repo.Add(mkPkg("numpy", "2.0.0", version.New("mkl")))
	p := pool.New(repo)

	req, err := version.ParseRequirement("numpy==2.0.0")
	if err != nil {
		t.Fatalf("ParseRequirement: %v", err)
	}
	_, err = Solve(p, pkgrepo.New(), NewRequest(Job{Kind: Install, Requirement: req}), SolveOptions{Strict: true})
	if err == nil {
		t.Fatalf("expected a missing-install-requires error")
	}
	var missingErr *solveerr.MissingInstallRequiresError
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected *solveerr.MissingInstallRequiresError, got %T: %v", err, err)
	}
}

func TestRequirementsAreSatisfiable(t *testing.T) {
	repo := pkgrepo.New()
	repo.Add(mkPkg("mkl", "10.3.1"))
	repo.Add(mkPkg("numpy", "1.9.2", version.New("mkl")))
	repo.Add(mkPkg("scipy", "1.1.0", version.New("missing")))
	repos := []*pkgrepo.Repository{repo}

	ok, err := RequirementsAreSatisfiable(repos, []version.Requirement{version.Named("numpy")})
	if err != nil {
		t.Fatalf("RequirementsAreSatisfiable: %v", err)
	}
	if !ok {
		t.Fatalf("expected numpy to be satisfiable")
	}

	ok, err = RequirementsAreSatisfiable(repos, []version.Requirement{version.Named("scipy")})
	if err != nil {
		t.Fatalf("RequirementsAreSatisfiable: %v", err)
	}
	if ok {
		t.Fatalf("expected scipy (with a missing dependency) to be unsatisfiable")
	}
}

func TestRequirementsAreCompleteScenario(t *testing.T) {
	repo := pkgrepo.New()
	repo.Add(mkPkg("mkl", "10.3.1"))
	repo.Add(mkPkg("numpy", "1.8.1", version.New("mkl", version.NewEqualTo(version.MustSemVer("10.3.1")))))
	repos := []*pkgrepo.Repository{repo}

	numpyCaret, _ := version.ParseRequirement("numpy^=1.8.1")
	mklExact, _ := version.ParseRequirement("mkl==10.3.1")

	complete, err := RequirementsAreComplete(repos, []version.Requirement{numpyCaret, mklExact})
	if err != nil {
		t.Fatalf("RequirementsAreComplete: %v", err)
	}
	if !complete {
		t.Fatalf("expected complete with both requirements present")
	}

	incomplete, err := RequirementsAreComplete(repos, []version.Requirement{numpyCaret})
	if err != nil {
		t.Fatalf("RequirementsAreComplete: %v", err)
	}
	if incomplete {
		t.Fatalf("expected incomplete with only numpy's requirement present")
	}
}

func TestRepositoryIsConsistentScenario(t *testing.T) {
	repo := pkgrepo.New()
	repo.Add(mkPkg("numpy", "1.8.1", version.New("mkl", version.NewEqualTo(version.MustSemVer("10.3.1")))))

	ok, err := RepositoryIsConsistent(repo)
	if err != nil {
		t.Fatalf("RepositoryIsConsistent: %v", err)
	}
	if ok {
		t.Fatalf("expected inconsistent repository (mkl is absent)")
	}

	repo.Add(mkPkg("mkl", "10.3.1"))
	ok, err = RepositoryIsConsistent(repo)
	if err != nil {
		t.Fatalf("RepositoryIsConsistent: %v", err)
	}
	if !ok {
		t.Fatalf("expected consistent repository once mkl is added")
	}
}

func TestDeterminism(t *testing.T) {
	build := func() (*pool.Pool, *pkgrepo.Repository) {
		repo := pkgrepo.New()
		repo.Add(mkPkg("mkl", "10.3.1"))
		repo.Add(mkPkg("libgfortran", "3.0.2"))
		repo.Add(mkPkg("numpy", "1.9.2",
			version.New("mkl", version.NewEqualTo(version.MustSemVer("10.3.1"))),
			version.New("libgfortran", version.NewCompatibleWith(version.MustSemVer("3.0.0"))),
		))
		return pool.New(repo), pkgrepo.New()
	}

	var first []string
	for i := 0; i < 5; i++ {
		p, installed := build()
		tr, err := Solve(p, installed, NewRequest(installJob("numpy")), SolveOptions{})
		if err != nil {
			t.Fatalf("Solve: %v", err)
		}
		var names []string
		for _, op := range tr.Operations {
			names = append(names, op.Pkg.Identity())
		}
		if i == 0 {
			first = names
			continue
		}
		if d := cmp.Diff(first, names); d != "" {
			t.Fatalf("run %d: operations differ from run 0 (-want +got):\n%s", i, d)
		}
	}
}

func TestRequirementsFromRepositoryRoundTrip(t *testing.T) {
	repo := pkgrepo.New()
	repo.Add(mkPkg("mkl", "10.3.1"))
	repo.Add(mkPkg("numpy", "1.9.2"))

	reqs := RequirementsFromRepository(repo)
	projected := RepositoryFromRequirements([]*pkgrepo.Repository{repo}, reqs)
	if projected.Len() != repo.Len() {
		t.Fatalf("projected.Len() = %d, want %d", projected.Len(), repo.Len())
	}

	reqs2 := RequirementsFromRepository(projected)
	projected2 := RepositoryFromRequirements([]*pkgrepo.Repository{projected}, reqs2)
	if projected2.Len() != projected.Len() {
		t.Fatalf("RepositoryFromRequirements is not idempotent: %d vs %d", projected2.Len(), projected.Len())
	}
}
