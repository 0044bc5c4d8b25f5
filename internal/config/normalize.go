package config

import "strings"

// normalize expands path fields and canonicalizes enumerated string values.
func (c *Config) normalize() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if strings.TrimSpace(c.History.Path) != "" {
		if c.History.Path, err = expandPath(c.History.Path); err != nil {
			return err
		}
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Render.TransitionType = strings.ToLower(strings.TrimSpace(c.Render.TransitionType))
	c.Render.Resolution = strings.ToLower(strings.TrimSpace(c.Render.Resolution))
	c.Render.Preset = strings.ToLower(strings.TrimSpace(c.Render.Preset))
	c.Subtitles.Position = strings.ToLower(strings.TrimSpace(c.Subtitles.Position))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	return nil
}
