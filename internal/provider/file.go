package provider

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/census-maximizer/internal/census"
	"github.com/danielpatrickdp/census-maximizer/internal/outcome"
)

// #region file-types
type fileOutcome struct {
	Census   map[int]float64   `yaml:"census"`
	Policies map[string]string `yaml:"policies"`
}

type outcomeFile struct {
	Unsolvable []int                 `yaml:"unsolvable"`
	Issues     map[int][]fileOutcome `yaml:"issues"`
}

// #endregion file-types

// #region file-provider
// FileProvider serves predictions from a YAML outcome table.
type FileProvider struct {
	issues     map[int][]outcome.Outcome
	unsolvable []int
}

// NewFileProvider serves issues from memory. The slices are not copied.
func NewFileProvider(issues map[int][]outcome.Outcome, unsolvable []int) *FileProvider {
	if issues == nil {
		issues = map[int][]outcome.Outcome{}
	}
	return &FileProvider{issues: issues, unsolvable: unsolvable}
}

// ParseFile decodes a YAML outcome table.
func ParseFile(raw []byte) (*FileProvider, error) {
	var f outcomeFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse outcome table: %w", err)
	}
	p := &FileProvider{
		issues:     make(map[int][]outcome.Outcome, len(f.Issues)),
		unsolvable: f.Unsolvable,
	}
	for id, rows := range f.Issues {
		outs := make([]outcome.Outcome, 0, len(rows))
		for i, row := range rows {
			o := outcome.New()
			for d, v := range row.Census {
				o.Census[census.Dimension(d)] = v
			}
			for name, dir := range row.Policies {
				c, err := outcome.ParsePolicyChange(dir)
				if err != nil {
					return nil, fmt.Errorf("issue %d outcome %d policy %q: %w", id, i, name, err)
				}
				o.Policies[name] = c
			}
			outs = append(outs, o)
		}
		p.issues[id] = outs
	}
	return p, nil
}

// LoadFile reads a YAML outcome table from disk.
func LoadFile(path string) (*FileProvider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read outcome table %s: %w", path, err)
	}
	return ParseFile(raw)
}

// Outcomes implements Provider. Issues on the unsolvable list report ErrNoData
// even when the table has rows for them.
func (p *FileProvider) Outcomes(_ context.Context, issueID int) ([]outcome.Outcome, error) {
	if slices.Contains(p.unsolvable, issueID) {
		return nil, fmt.Errorf("issue %d is marked unsolvable: %w", issueID, ErrNoData)
	}
	outs, ok := p.issues[issueID]
	if !ok || len(outs) == 0 {
		return nil, fmt.Errorf("issue %d: %w", issueID, ErrNoData)
	}
	return outs, nil
}

// Unsolvable returns the issue ids the table marks as impossible to predict.
func (p *FileProvider) Unsolvable() []int {
	return append([]int(nil), p.unsolvable...)
}

// IssueIDs returns every issue with predictions, ascending.
func (p *FileProvider) IssueIDs() []int {
	ids := make([]int, 0, len(p.issues))
	for id := range p.issues {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// #endregion file-provider
