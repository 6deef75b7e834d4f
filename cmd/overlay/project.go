package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"overlaytv/internal/models"
	"overlaytv/internal/share"
	"overlaytv/internal/validation"
)

// transport picks the document service when --remote is set and the
// self-contained link codec otherwise.
func (c *commandContext) transport() share.Transport {
	if c.remote != "" {
		return share.NewRemoteTransport(c.remote)
	}
	return share.LinkTransport{}
}

// readProjectFile loads a project from YAML, or JSON when the file ends in
// .json.
func readProjectFile(path string) (models.Project, error) {
	var p models.Project
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read project: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &p)
	} else {
		err = yaml.Unmarshal(data, &p)
	}
	if err != nil {
		return p, fmt.Errorf("parse project %s: %w", path, err)
	}
	if err := validation.ValidateProject(p); err != nil {
		return p, fmt.Errorf("project %s: %w", path, err)
	}
	return p, nil
}

// loadProject resolves --project or --token (a bare token or a share link).
func (c *commandContext) loadProject(ctx context.Context, path, token string) (models.Project, error) {
	switch {
	case path != "" && token != "":
		return models.Project{}, errors.New("use either --project or --token, not both")
	case path != "":
		return readProjectFile(path)
	case token != "":
		tok, err := share.TokenFromLink(token)
		if err != nil {
			return models.Project{}, err
		}
		return c.transport().Load(ctx, tok)
	default:
		return models.Project{}, errors.New("one of --project or --token is required")
	}
}
