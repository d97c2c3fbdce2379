package main

import (
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/exam/yamlprovider"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var examsCmd = &cobra.Command{
	Use:   "exams",
	Short: "List the exam catalogue",
	Long: `Loads the exam files from exams.path, validates them and prints the catalogue
in the order the home screen reads it.`,
	Args: cobra.NoArgs,
	RunE: listExams,
}

func listExams(cmd *cobra.Command, _ []string) error {
	settings, err := loadConfig()
	if err != nil {
		return err
	}

	content, err := yamlprovider.Load(afero.NewOsFs(), settings.Exams.Path)
	if err != nil {
		return err
	}
	summaries, err := content.ListExams(cmd.Context())
	if err != nil {
		return err
	}

	printCatalogue(cmd.OutOrStdout(), summaries)
	return nil
}
