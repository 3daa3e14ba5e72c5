// Package scenario loads a small declarative YAML fixture format:
// top-level `packages` (pretty package strings), optional `installed`,
// and `request` (a list of `{operation, requirement}` entries). It is
// the one place in this repository that parses package metadata out of
// human-readable strings, an external collaborator kept well outside
// the solver's hard core.
//
// Every I/O and parse failure is wrapped with github.com/pkg/errors, the
// way a small declarative fixture loader is expected to report exactly
// which file and field went wrong.
package scenario

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/depsolver/depsolver/pkg/pkgrepo"
	"github.com/depsolver/depsolver/pkg/request"
	"github.com/depsolver/depsolver/pkg/version"
)

// File is the raw, unmarshaled shape of a scenario YAML document.
type File struct {
	Packages  []string       `yaml:"packages"`
	Installed []string       `yaml:"installed"`
	Request   []RequestEntry `yaml:"request"`
}

// RequestEntry is one entry of the `request` list: an operation name
// (install/remove/update) plus the requirement string it applies to.
type RequestEntry struct {
	Operation   string `yaml:"operation"`
	Requirement string `yaml:"requirement"`
}

// Load reads and parses the scenario file at path.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario: reading %s", path)
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, errors.Wrapf(err, "scenario: parsing %s", path)
	}
	return &f, nil
}

// Build turns the raw File into the solver's value types: a repository
// of every declared package, the subset named in `installed`, and the
// Request described by `request`.
func (f *File) Build() (repo *pkgrepo.Repository, installed *pkgrepo.Repository, req request.Request, err error) {
	repo = pkgrepo.New()
	byIdentity := make(map[string]*pkgrepo.Package, len(f.Packages))
	for _, s := range f.Packages {
		pkg, err := ParsePackage(s)
		if err != nil {
			return nil, nil, request.Request{}, err
		}
		repo.Add(pkg)
		byIdentity[pkg.Identity()] = pkg
	}

	installed = pkgrepo.New()
	for _, s := range f.Installed {
		name, ver, err := parseNameVersion(strings.Fields(s))
		if err != nil {
			return nil, nil, request.Request{}, errors.Wrapf(err, "scenario: installed entry %q", s)
		}
		pkg, ok := byIdentity[name+"@"+ver.String()]
		if !ok {
			return nil, nil, request.Request{}, errors.Errorf("scenario: installed package %q is not declared in packages", s)
		}
		installed.Add(pkg)
	}

	jobs := make([]request.Job, 0, len(f.Request))
	for _, e := range f.Request {
		kind, err := parseJobKind(e.Operation)
		if err != nil {
			return nil, nil, request.Request{}, err
		}
		r, err := version.ParseRequirement(e.Requirement)
		if err != nil {
			return nil, nil, request.Request{}, errors.Wrapf(err, "scenario: request entry %q", e.Requirement)
		}
		jobs = append(jobs, request.Job{Kind: kind, Requirement: r})
	}

	return repo, installed, request.NewRequest(jobs...), nil
}

func parseJobKind(op string) (request.JobKind, error) {
	switch strings.ToLower(op) {
	case "install":
		return request.Install, nil
	case "remove":
		return request.Remove, nil
	case "update":
		return request.Update, nil
	default:
		return 0, errors.Errorf("scenario: unrecognized operation %q", op)
	}
}

// ParsePackage parses one "pretty package string": "<name> <version>"
// optionally followed by
// "depends <req>,<req>,...", "conflicts <req>,...", and/or
// "provides <req>,...", each introduced keyword consuming exactly the
// next whitespace-delimited field as its comma-joined requirement list.
func ParsePackage(s string) (*pkgrepo.Package, error) {
	fields := strings.Fields(s)
	name, ver, err := parseNameVersion(fields)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario: package %q", s)
	}

	pkg := &pkgrepo.Package{Name: name, Version: ver}
	rest := fields[2:]
	for i := 0; i < len(rest); i += 2 {
		keyword := rest[i]
		if i+1 >= len(rest) {
			return nil, errors.Errorf("scenario: package %q: %q has no requirement list", s, keyword)
		}
		reqs, err := parseRequirementList(rest[i+1])
		if err != nil {
			return nil, errors.Wrapf(err, "scenario: package %q", s)
		}
		switch strings.ToLower(keyword) {
		case "depends":
			pkg.InstallRequires = reqs
		case "conflicts":
			pkg.Conflicts = reqs
		case "provides":
			pkg.Provides = reqs
		default:
			return nil, errors.Errorf("scenario: package %q: unrecognized keyword %q", s, keyword)
		}
	}
	return pkg, nil
}

func parseNameVersion(fields []string) (string, version.Version, error) {
	if len(fields) < 2 {
		return "", nil, errors.Errorf("expected at least a name and a version, got %q", strings.Join(fields, " "))
	}
	return fields[0], version.Parse(fields[1]), nil
}

// parseRequirementList splits a comma-joined list of single-package
// requirement clauses, each parsed through version.ParseRequirement.
// Unlike a Requirement's own internal constraint conjunction (which also
// uses commas), every clause here names a distinct package, as in
// "depends mkl==10.3-1,libgfortran^=3.0.0".
func parseRequirementList(s string) ([]version.Requirement, error) {
	clauses := strings.Split(s, ",")
	out := make([]version.Requirement, 0, len(clauses))
	for _, c := range clauses {
		r, err := version.ParseRequirement(c)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
