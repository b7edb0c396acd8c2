package cmd

import (
	"fmt"
	"os"

	"audioseg/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

The configuration file is optional. It holds the default bitrate and
sample rate for extract and tells audioseg where to find ffmpeg.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, cfgFile, os.Stdout)
}

// setupQuestion is one prompt mapped to a config key
type setupQuestion struct {
	key     string
	message string
}

var setupQuestions = []setupQuestion{
	{key: "audio.bitrate", message: "Default bitrate for mp3 and ogg output?"},
	{key: "audio.sample_rate", message: "Default output sample rate in Hz (empty keeps the source rate)?"},
	{key: "ffmpeg.path", message: "Path to the ffmpeg executable?"},
	{key: "ffmpeg.temp_dir", message: "Directory for temporary files (empty uses the system default)?"},
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, output OutputWriter) error {
	if configPath == "" {
		configPath = config.DefaultPath
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(output, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(output, "Welcome to audioseg setup!")
	fmt.Fprintln(output)

	cfg := config.Default()
	mgr := config.NewConfigManager(cfg, "")

	for _, q := range setupQuestions {
		current, err := mgr.Get(q.key)
		if err != nil {
			return err
		}
		answer, err := prompter.Input(q.message, current)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if err := mgr.Set(q.key, answer); err != nil {
			return err
		}
	}

	// Save configuration
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(output)
	fmt.Fprintf(output, "Configuration saved to %s\n", configPath)
	return nil
}
