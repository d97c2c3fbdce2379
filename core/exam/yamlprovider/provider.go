// Package yamlprovider loads an exam catalogue from YAML files.
//
// A catalogue file lists exams under a top-level "exams" key:
//
//	exams:
//	  - id: biology-101
//	    title: Introductory Biology
//	    duration: 30m
//	    questions:
//	      - text: Which organelle produces energy?
//	        options: [Nucleus, Mitochondria, Ribosome]
//	      - text: Describe photosynthesis.
//
// Loading a directory reads every .yaml and .yml file in it, in name order.
package yamlprovider

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/exam"
)

type catalogueFile struct {
	Exams []exam.Exam `yaml:"exams"`
}

// Provider is an [exam.ContentProvider] over a catalogue read at load time.
type Provider struct {
	*exam.MemoryProvider
}

var _ exam.ContentProvider = (*Provider)(nil)

// Load reads the catalogue at path, a file or a directory, from fs.
func Load(fs afero.Fs, path string) (*Provider, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat exam catalogue: %w", err)
	}

	files := []string{path}
	if info.IsDir() {
		entries, err := afero.ReadDir(fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read exam directory: %w", err)
		}
		files = files[:0]
		for _, entry := range entries {
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
				continue
			}
			files = append(files, filepath.Join(path, entry.Name()))
		}
		slices.Sort(files)
	}

	var exams []exam.Exam
	seen := map[string]string{}
	for _, file := range files {
		loaded, err := loadFile(fs, file)
		if err != nil {
			return nil, err
		}
		for _, e := range loaded {
			if previous, ok := seen[e.ID]; ok {
				return nil, fmt.Errorf("duplicate exam id %q in %s, already defined in %s", e.ID, file, previous)
			}
			seen[e.ID] = file
			exams = append(exams, e)
		}
	}

	return &Provider{MemoryProvider: exam.NewMemoryProvider(exams...)}, nil
}

func loadFile(fs afero.Fs, file string) ([]exam.Exam, error) {
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	var catalogue catalogueFile
	if err := yaml.Unmarshal(data, &catalogue); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", file, err)
	}

	for i, e := range catalogue.Exams {
		if err := validate(e); err != nil {
			return nil, fmt.Errorf("%s: exam %d: %w", file, i+1, err)
		}
	}
	return catalogue.Exams, nil
}

func validate(e exam.Exam) error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("missing id")
	}
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("exam %q has no title", e.ID)
	}
	if e.Duration < 0 {
		return fmt.Errorf("exam %q has a negative duration", e.ID)
	}
	for i, q := range e.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("exam %q question %d has no text", e.ID, i+1)
		}
		if len(q.Options) == 1 {
			return fmt.Errorf("exam %q question %d has a single option", e.ID, i+1)
		}
		if len(q.Options) > 26 {
			return fmt.Errorf("exam %q question %d has more options than letters", e.ID, i+1)
		}
	}
	return nil
}
