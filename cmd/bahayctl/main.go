// bahayctl is the operator CLI: promote users, verify agents and moderate listings from a shell.
// It talks to the database directly, so it is how the first admin is created.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"bahayscout/backend/internal/config"
	"bahayscout/backend/internal/db"
	listingdomain "bahayscout/backend/internal/listing/domain"
	"bahayscout/backend/internal/listing/query"
	listingrepo "bahayscout/backend/internal/listing/repository"
	profiledomain "bahayscout/backend/internal/profile/domain"
	profilerepo "bahayscout/backend/internal/profile/repository"
	userdomain "bahayscout/backend/internal/user/domain"
	userrepo "bahayscout/backend/internal/user/repository"
)

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
}

type profileStore interface {
	GetByUserID(ctx context.Context, userID string) (*profiledomain.Profile, error)
	SetRole(ctx context.Context, id string, role profiledomain.Role) (*profiledomain.Profile, error)
	SetVerified(ctx context.Context, id string, verified bool) (*profiledomain.Profile, error)
}

type listingStore interface {
	GetByID(ctx context.Context, id string) (*listingdomain.Listing, error)
	UpdateStatus(ctx context.Context, id string, from, to listingdomain.Status, reason *string) (bool, error)
	ListScoped(ctx context.Context, scope query.Scope, p listingdomain.Page) ([]*listingdomain.Listing, int, error)
}

// app holds the stores the commands operate on. open fills it lazily so --help works offline.
type app struct {
	users    userStore
	profiles profileStore
	listings listingStore
	open     func(ctx context.Context) error
}

func (a *app) ensure(cmd *cobra.Command, _ []string) error {
	if a.open == nil {
		return nil
	}
	return a.open(cmd.Context())
}

func newRootCmd(a *app, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "bahayctl",
		Short:         "Operate a BahayScout deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(newUserCmd(a), newListingCmd(a))
	return root
}

func main() {
	a := &app{}
	var closeDB func() error
	a.open = func(ctx context.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		closeDB = conn.Close
		a.users = userrepo.NewPostgresRepository(conn)
		a.profiles = profilerepo.NewPostgresRepository(conn)
		a.listings = listingrepo.NewPostgresRepository(conn)
		return nil
	}

	err := newRootCmd(a, os.Stdout).ExecuteContext(context.Background())
	if closeDB != nil {
		_ = closeDB()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "bahayctl:", err)
		os.Exit(1)
	}
}
