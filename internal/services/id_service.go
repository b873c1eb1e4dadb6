package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"deeplinkqr/internal/config"
	"deeplinkqr/internal/repositories"
)

type IDService struct {
	cfg   config.Config
	links *repositories.LinkRepo
}

func NewIDService(cfg config.Config, links *repositories.LinkRepo) *IDService {
	return &IDService{cfg: cfg, links: links}
}

// IsValidPath reports whether a custom path may serve as a link id.
func (s *IDService) IsValidPath(path string) bool {
	if len(path) < 1 || len(path) > s.cfg.PathMaxLen {
		return false
	}
	for _, c := range path {
		if !(c >= 'a' && c <= 'z') &&
			!(c >= 'A' && c <= 'Z') &&
			!(c >= '0' && c <= '9') &&
			c != '-' && c != '_' {
			return false
		}
	}
	return true
}

// NewID generates a short unique link id, retrying on collision.
func (s *IDService) NewID() (string, error) {
	for i := 0; i < 10; i++ {
		id := shortID(s.cfg.IDLength)
		exists, err := s.links.ExistsID(id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not find unique id")
}

func shortID(n int) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(hex) {
		n = len(hex)
	}
	return hex[:n]
}
