package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mkoval-dev/peercall/internal/common"
)

// Online prints the current presence snapshot. Profiles are fetched for their
// avatar URL; a user can be online before their profile resolves, so a
// missing profile renders a placeholder instead of failing the listing.
func (a *App) Online(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println(userMessage(common.ErrorNotAuthenticated))
		return common.ErrorNotAuthenticated
	}

	snap := a.currentSnapshot()
	if len(snap) == 0 {
		fmt.Println("Nobody is online.")
		return nil
	}

	ids := make([]string, 0, len(snap))
	for id := range snap {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("%d online:\n", len(ids))
	for _, id := range ids {
		rec := snap[id]

		avatarURL := "-"
		p, err := a.profiles.Get(ctx, id)
		if err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				a.logger.Warn(ctx, "profile lookup failed", "user_id", id, "error", err)
			}
		} else if p.AvatarURL != nil {
			avatarURL = *p.AvatarURL
		}

		fmt.Printf("  %s (%s)  last seen %s  avatar %s\n",
			rec.UserName, rec.UserID, rec.LastSeen.Format("15:04:05"), avatarURL)
	}
	return nil
}
