package storage

import (
	"sort"

	"github.com/mcoot/codenames-go/internal/model"
)

// SortRoleAssignments orders assignments by player id
func SortRoleAssignments(assignments []model.RoleAssignment) {
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].PlayerID < assignments[j].PlayerID
	})
}

// RoleOf returns the role held by a player, if any
func RoleOf(assignments []model.RoleAssignment, playerID model.PlayerID) (model.Role, bool) {
	for _, ra := range assignments {
		if ra.PlayerID == playerID {
			return ra.Role, true
		}
	}
	return "", false
}
