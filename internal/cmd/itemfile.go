package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/slicekit/slicer/internal/prd"
)

// itemFile is the YAML shape of a roadmap item submission.
type itemFile struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	Constraints struct {
		MaxUnits    int      `yaml:"max_units"`
		MinUnits    int      `yaml:"min_units"`
		MustInclude []string `yaml:"must_include"`
		MustExclude []string `yaml:"must_exclude"`
	} `yaml:"constraints"`
}

// loadRoadmapItem reads a roadmap item from a YAML file.
func loadRoadmapItem(path string) (prd.RoadmapItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return prd.RoadmapItem{}, fmt.Errorf("reading item file: %w", err)
	}

	var f itemFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return prd.RoadmapItem{}, fmt.Errorf("parsing item file: %w", err)
	}

	return prd.RoadmapItem{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Type:        prd.ItemType(f.Type),
		Constraints: prd.Constraints{
			MaxUnits:    f.Constraints.MaxUnits,
			MinUnits:    f.Constraints.MinUnits,
			MustInclude: f.Constraints.MustInclude,
			MustExclude: f.Constraints.MustExclude,
		},
	}, nil
}
