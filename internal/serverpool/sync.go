package serverpool

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"matchbot/internal/domain"
	"os"

	"gopkg.in/yaml.v3"
)

type serverFile struct {
	Servers []serverEntry `yaml:"servers"`
}

type serverEntry struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	Region   string `yaml:"region"`
}

func (e serverEntry) validate() error {
	if e.Name == "" {
		return errors.New("server entry without name")
	}
	if e.Host == "" {
		return fmt.Errorf("server %s: host is required", e.Name)
	}
	if e.Port <= 0 || e.Port > 65535 {
		return fmt.Errorf("server %s: invalid port %d", e.Name, e.Port)
	}
	return nil
}

// Sync upserts the operator-managed servers listed in the YAML file at path.
// Reservations are left untouched. A missing file syncs nothing.
func (p *Pool) Sync(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		p.logger.Warn().Str("path", path).Msg("servers file not found, skipping sync")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read servers file: %w", err)
	}

	var file serverFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("failed to parse servers file: %w", err)
	}

	servers := make([]domain.RconServer, 0, len(file.Servers))
	for _, e := range file.Servers {
		if err := e.validate(); err != nil {
			return 0, err
		}
		servers = append(servers, domain.RconServer{
			Name:     e.Name,
			Host:     e.Host,
			Port:     e.Port,
			Password: e.Password,
			Region:   e.Region,
		})
	}

	if err := p.store.UpsertBatch(ctx, servers); err != nil {
		return 0, err
	}

	p.logger.Info().Int("count", len(servers)).Str("path", path).Msg("servers synced")
	return len(servers), nil
}
