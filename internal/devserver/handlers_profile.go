package devserver

import (
	"slices"

	"github.com/gofiber/fiber/v2"
	"github.com/sadopc/kitchenos/internal/api"
)

func (s *Server) Profile(c *fiber.Ctx) error {
	acc := currentAccount(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(acc.user)
}

// FamilyInfo returns the caller's family. Invite tokens are only shown to
// the family head.
func (s *Server) FamilyInfo(c *fiber.Ctx) error {
	acc := currentAccount(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	if acc.user.FamilyID == nil {
		return c.JSON(api.FamilyInfoResponse{})
	}
	fam := *s.families[*acc.user.FamilyID]
	fam.Members = slices.Clone(fam.Members)
	if !acc.user.IsFamilyHead {
		for i := range fam.Members {
			fam.Members[i].InviteToken = ""
		}
	}
	return c.JSON(api.FamilyInfoResponse{Family: &fam})
}
