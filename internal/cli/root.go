package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	id, err := a.session.Identity()
	if err != nil {
		return "guest"
	}
	return id.UserID
}

// Root runs the interactive loop on stdin until EOF or exit.
func (a *App) Root(ctx context.Context) {
	fmt.Println("peercall (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
