//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"audioseg/cmd"
	"audioseg/infrastructure/config"

	"github.com/cucumber/godog"
)

type setupContext struct {
	tempDir         string
	configPath      string
	originalContent string
	output          *bytes.Buffer
	err             error
}

var SharedSetupContext = &setupContext{}

// MockPrompter implements cmd.Prompter for testing
type MockPrompter struct {
	inputResponses   []string
	confirmResponses []bool
	inputIndex       int
	confirmIndex     int
}

func NewMockPrompter(inputs []string, confirms []bool) *MockPrompter {
	return &MockPrompter{
		inputResponses:   inputs,
		confirmResponses: confirms,
	}
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		if defaultValue != "" {
			return defaultValue, nil
		}
		return "", fmt.Errorf("no more input responses available for message: %s", message)
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return defaultValue, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		// Create temp directory for each scenario
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		SharedSetupContext = &setupContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config", "config.yaml"),
			output:     &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		// Cleanup temp directory
		if SharedSetupContext.tempDir != "" {
			os.RemoveAll(SharedSetupContext.tempDir)
		}
		SharedSetupContext = &setupContext{}
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, func() error { return SharedSetupContext.noConfigFileExistsForSetup() })
	ctx.Step(`^a config file already exists for setup$`, func() error { return SharedSetupContext.aConfigFileAlreadyExistsForSetup() })
	ctx.Step(`^I run the setup command with inputs:$`, func(t *godog.Table) error { return SharedSetupContext.run(nil, t) })
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, func(answer string) error {
		return SharedSetupContext.run([]bool{answer == "yes"}, nil)
	})
	ctx.Step(`^I run the setup command with confirmation "([^"]*)" and inputs:$`, func(answer string, t *godog.Table) error {
		return SharedSetupContext.run([]bool{answer == "yes"}, t)
	})
	ctx.Step(`^a config file should exist$`, func() error { return SharedSetupContext.aConfigFileShouldExist() })
	ctx.Step(`^the setup config should have "([^"]*)" set to "([^"]*)"$`, func(k, v string) error {
		return SharedSetupContext.theSetupConfigShouldHave(k, v)
	})
	ctx.Step(`^the setup should be cancelled$`, func() error { return SharedSetupContext.theSetupShouldBeCancelled() })
	ctx.Step(`^the existing config should be unchanged$`, func() error { return SharedSetupContext.theExistingConfigShouldBeUnchanged() })
	ctx.Step(`^the setup should fail with "([^"]*)"$`, func(s string) error { return SharedSetupContext.theSetupShouldFailWith(s) })
}

func (s *setupContext) noConfigFileExistsForSetup() error {
	// Just ensure the config path directory exists but no config file
	return os.MkdirAll(filepath.Dir(s.configPath), 0755)
}

func (s *setupContext) aConfigFileAlreadyExistsForSetup() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}

	content := `audio:
  bitrate: "160k"
ffmpeg:
  path: "/opt/ffmpeg/bin/ffmpeg"
`
	s.originalContent = content
	return os.WriteFile(s.configPath, []byte(content), 0644)
}

// run answers prompts with the value column of table, in row order
func (s *setupContext) run(confirms []bool, table *godog.Table) error {
	var inputs []string
	if table != nil {
		for i, row := range table.Rows {
			if i == 0 {
				continue // header
			}
			inputs = append(inputs, row.Cells[1].Value)
		}
	}

	s.err = cmd.RunSetupWithPrompter(NewMockPrompter(inputs, confirms), s.configPath, s.output)
	return nil
}

func (s *setupContext) aConfigFileShouldExist() error {
	if s.err != nil {
		return fmt.Errorf("setup failed: %v", s.err)
	}
	if _, err := os.Stat(s.configPath); err != nil {
		return fmt.Errorf("config file does not exist: %w", err)
	}
	return nil
}

func (s *setupContext) theSetupConfigShouldHave(key, expected string) error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}
	got, err := config.NewConfigManager(cfg, "").Get(key)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("expected %s %q, got %q", key, expected, got)
	}
	return nil
}

func (s *setupContext) theSetupShouldBeCancelled() error {
	if s.err != nil {
		return fmt.Errorf("unexpected error: %v", s.err)
	}
	if !strings.Contains(s.output.String(), "Setup cancelled.") {
		return fmt.Errorf("expected setup to be cancelled, output:\n%s", s.output.String())
	}
	return nil
}

func (s *setupContext) theExistingConfigShouldBeUnchanged() error {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return err
	}
	if string(data) != s.originalContent {
		return fmt.Errorf("config file was modified")
	}
	return nil
}

func (s *setupContext) theSetupShouldFailWith(expected string) error {
	if s.err == nil {
		return fmt.Errorf("expected setup to fail")
	}
	if !strings.Contains(s.err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got: %v", expected, s.err)
	}
	return nil
}
