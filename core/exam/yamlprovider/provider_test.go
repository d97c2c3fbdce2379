package yamlprovider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/exam"
)

const biology = `exams:
  - id: bio
    title: Biology
    instructions: Answer every question.
    duration: 30m
    questions:
      - text: Which organelle produces energy?
        options: [Nucleus, Mitochondria, Ribosome]
      - text: Describe photosynthesis.
`

const chemistry = `exams:
  - id: chem
    title: Chemistry
    questions:
      - text: What is H2O?
        options: [Water, Salt]
`

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/exams/bio.yaml", []byte(biology), 0o644))

	p, err := Load(fs, "/exams/bio.yaml")
	require.NoError(t, err)

	e, err := p.Exam(context.Background(), "bio")
	require.NoError(t, err)
	assert.Equal(t, "Biology", e.Title)
	assert.Equal(t, 30*time.Minute, e.Duration)
	require.Len(t, e.Questions, 2)
	assert.Equal(t, "abc", e.Questions[0].Choices())
	assert.False(t, e.Questions[1].MultipleChoice())
}

func TestLoadDirectoryInNameOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/exams/b-chem.yml", []byte(chemistry), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/exams/a-bio.yaml", []byte(biology), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/exams/notes.txt", []byte("not yaml: ["), 0o644))

	p, err := Load(fs, "/exams")
	require.NoError(t, err)

	summaries, err := p.ListExams(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "bio", summaries[0].ID)
	assert.Equal(t, "chem", summaries[1].ID)
	assert.Equal(t, 1, summaries[1].QuestionCount)
}

func TestLoadRejectsInvalidCatalogues(t *testing.T) {
	cases := map[string]string{
		"missing id":     "exams:\n  - title: Untitled\n",
		"missing title":  "exams:\n  - id: x\n",
		"empty question": "exams:\n  - id: x\n    title: X\n    questions:\n      - options: [a, b]\n",
		"single option":  "exams:\n  - id: x\n    title: X\n    questions:\n      - text: Q\n        options: [a]\n",
		"malformed yaml": "exams: [",
		"bad duration":   "exams:\n  - id: x\n    title: X\n    duration: soon\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/exam.yaml", []byte(content), 0o644))

			_, err := Load(fs, "/exam.yaml")
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/exams/one.yaml", []byte(biology), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/exams/two.yaml", []byte(biology), 0o644))

	_, err := Load(fs, "/exams")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate exam id")
}

func TestLoadMissingPath(t *testing.T) {
	p, err := Load(afero.NewMemMapFs(), "/nowhere.yaml")
	require.Error(t, err)
	assert.Nil(t, p)
	assert.False(t, errors.Is(err, exam.ErrNotFound))
}
