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

type configContext struct {
	tempDir    string
	configPath string
	cfg        *config.Config
	output     *bytes.Buffer
	err        error
}

// SharedConfigContext is reset before each scenario via Before hook
var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		SharedConfigContext = &configContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config", "config.yaml"),
			output:     &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedConfigContext.tempDir != "" {
			os.RemoveAll(SharedConfigContext.tempDir)
		}
		SharedConfigContext = &configContext{}
		return c, nil
	})

	ctx.Step(`^no config file exists$`, func() error { return SharedConfigContext.noConfigFileExists() })
	ctx.Step(`^a config file with:$`, func(doc *godog.DocString) error { return SharedConfigContext.aConfigFileWith(doc) })
	ctx.Step(`^I load the configuration$`, func() error { return SharedConfigContext.iLoadTheConfiguration() })
	ctx.Step(`^I set config "([^"]*)" to "([^"]*)"$`, func(k, v string) error { return SharedConfigContext.iSetConfigTo(k, v) })
	ctx.Step(`^I attempt to set config "([^"]*)" to "([^"]*)"$`, func(k, v string) error { return SharedConfigContext.iAttemptToSetConfigTo(k, v) })
	ctx.Step(`^I list the configuration$`, func() error { return SharedConfigContext.iListTheConfiguration() })
	ctx.Step(`^the config value "([^"]*)" should be "([^"]*)"$`, func(k, v string) error { return SharedConfigContext.theConfigValueShouldBe(k, v) })
	ctx.Step(`^I should receive a config error containing "([^"]*)"$`, func(s string) error { return SharedConfigContext.iShouldReceiveAConfigErrorContaining(s) })
	ctx.Step(`^the config listing should contain "([^"]*)"$`, func(s string) error { return SharedConfigContext.theConfigListingShouldContain(s) })
}

func (c *configContext) noConfigFileExists() error {
	if _, err := os.Stat(c.configPath); err == nil {
		return fmt.Errorf("expected no config file at %s", c.configPath)
	}
	return nil
}

func (c *configContext) aConfigFileWith(doc *godog.DocString) error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(c.configPath, []byte(doc.Content), 0644)
}

func (c *configContext) iLoadTheConfiguration() error {
	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return fmt.Errorf("unexpected error loading config: %w", err)
	}
	c.cfg = cfg
	return nil
}

func (c *configContext) loaded() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	return config.LoadOrDefault(c.configPath)
}

func (c *configContext) iSetConfigTo(key, value string) error {
	if err := c.iAttemptToSetConfigTo(key, value); err != nil {
		return err
	}
	if c.err != nil {
		return fmt.Errorf("unexpected error: %w", c.err)
	}
	// Force the next load to read the saved file
	c.cfg = nil
	return nil
}

func (c *configContext) iAttemptToSetConfigTo(key, value string) error {
	cfg, err := c.loaded()
	if err != nil {
		return err
	}
	c.err = cmd.RunConfigSetWithDependencies(cfg, c.configPath, key, value, c.output)
	return nil
}

func (c *configContext) iListTheConfiguration() error {
	cfg, err := c.loaded()
	if err != nil {
		return err
	}
	return cmd.RunConfigListWithDependencies(cfg, c.configPath, c.output)
}

func (c *configContext) theConfigValueShouldBe(key, expected string) error {
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	got, err := config.NewConfigManager(c.cfg, "").Get(key)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("expected %s %q, got %q", key, expected, got)
	}
	return nil
}

func (c *configContext) iShouldReceiveAConfigErrorContaining(expected string) error {
	if c.err == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if !strings.Contains(c.err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got: %v", expected, c.err)
	}
	return nil
}

func (c *configContext) theConfigListingShouldContain(expected string) error {
	if !strings.Contains(c.output.String(), expected) {
		return fmt.Errorf("expected listing to contain %q, got:\n%s", expected, c.output.String())
	}
	return nil
}
