package core

import (
	"fmt"

	"github.com/huangsam/courseload/core/algo"
	"github.com/huangsam/courseload/schema"
)

// Catalog is the indexed, read-only view of subjects, requirements and prerequisite edges.
// It is safe for concurrent use once built.
type Catalog struct {
	subjects     []schema.Subject
	index        map[string]int
	requirements map[string][]schema.Requirement
	prereqs      map[string][]string
	coreqs       map[string][]string
	norm         schema.NormContext
}

// NewCatalog indexes raw catalog data. Subject codes are normalized and must be unique.
// Edges and requirements may reference unknown subjects; the check command reports those.
// Non-finite numbers read as missing.
func NewCatalog(data schema.CatalogData) (*Catalog, error) {
	c := &Catalog{
		subjects:     make([]schema.Subject, 0, len(data.Subjects)),
		index:        make(map[string]int, len(data.Subjects)),
		requirements: make(map[string][]schema.Requirement),
		prereqs:      make(map[string][]string),
		coreqs:       make(map[string][]string),
	}
	for _, s := range data.Subjects {
		s.Code = schema.NormalizeCode(s.Code)
		if s.Code == "" {
			return nil, fmt.Errorf("subject %q has an empty code: %w", s.Name, ErrMalformedInput)
		}
		if _, dup := c.index[s.Code]; dup {
			return nil, fmt.Errorf("duplicate subject code %s: %w", s.Code, ErrMalformedInput)
		}
		s.DropNonFinite()
		c.index[s.Code] = len(c.subjects)
		c.subjects = append(c.subjects, s)
	}
	for _, r := range data.Requirements {
		r.SubjectCode = schema.NormalizeCode(r.SubjectCode)
		c.requirements[r.SubjectCode] = append(c.requirements[r.SubjectCode], r)
	}
	addEdges(c.prereqs, data.Prerequisites)
	addEdges(c.coreqs, data.Corequisites)
	c.norm = algo.ComputeNormContext(c.subjects)
	return c, nil
}

func addEdges(dst map[string][]string, edges []schema.Edge) {
	for _, e := range edges {
		from, to := schema.NormalizeCode(e.SubjectCode), schema.NormalizeCode(e.RelatedCode)
		if from == "" || to == "" {
			continue
		}
		dst[from] = append(dst[from], to)
	}
}

// Len returns the number of subjects.
func (c *Catalog) Len() int { return len(c.subjects) }

// Subjects returns all subjects in load order. Callers must not modify the result.
func (c *Catalog) Subjects() []schema.Subject { return c.subjects }

// Subject looks up a subject by code.
func (c *Catalog) Subject(code string) (*schema.Subject, error) {
	i, ok := c.index[schema.NormalizeCode(code)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", code, ErrNotFound)
	}
	return &c.subjects[i], nil
}

// Has reports whether the code is in the catalog.
func (c *Catalog) Has(code string) bool {
	_, ok := c.index[schema.NormalizeCode(code)]
	return ok
}

// Requirements returns the skill requirements of a subject.
func (c *Catalog) Requirements(code string) []schema.Requirement {
	return c.requirements[schema.NormalizeCode(code)]
}

// AllRequirements returns requirements keyed by subject code.
func (c *Catalog) AllRequirements() map[string][]schema.Requirement { return c.requirements }

// Prerequisites returns the prerequisite codes of a subject.
func (c *Catalog) Prerequisites(code string) []string {
	return c.prereqs[schema.NormalizeCode(code)]
}

// Corequisites returns the corequisite codes of a subject.
func (c *Catalog) Corequisites(code string) []string {
	return c.coreqs[schema.NormalizeCode(code)]
}

// Norm returns the catalog-wide normalization maxima.
func (c *Catalog) Norm() schema.NormContext { return c.norm }

// Names maps every subject code to its name.
func (c *Catalog) Names() map[string]string {
	out := make(map[string]string, len(c.subjects))
	for _, s := range c.subjects {
		out[s.Code] = s.Name
	}
	return out
}
