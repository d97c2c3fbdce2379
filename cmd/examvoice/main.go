// examvoice runs the voice exam assistant on the local microphone and
// speaker.
package main

import (
	"fmt"
	"os"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/internal/config"
	"github.com/spf13/cobra"
)

var (
	configFile string
	envFiles   []string
)

var rootCmd = &cobra.Command{
	Use:   "examvoice",
	Short: "Voice-driven exam assistant",
	Long: `examvoice lets a candidate pick, take and submit exams by voice.

The assistant speaks the catalogue and the questions through Deepgram text to
speech and listens for commands through Deepgram speech to text.

Settings are read from the environment (EXAMVOICE_*), an optional .env file and
an optional YAML config file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(examsCmd)
}

func loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return config.Config{}, err
	}
	return config.Load(configFile)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
