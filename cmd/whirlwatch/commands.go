package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amaumene/whirlwatch/internal/api"
	"github.com/amaumene/whirlwatch/internal/app"
	"github.com/amaumene/whirlwatch/internal/controllers"
	"github.com/amaumene/whirlwatch/internal/models"
	"github.com/amaumene/whirlwatch/internal/scheduler"
	"github.com/amaumene/whirlwatch/internal/viewmodel"
)

func newLoginCommand() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				password := os.Getenv("WHIRLWATCH_PASSWORD")
				if username == "" || password == "" {
					var err error
					if username, password, err = promptCredentials(username); err != nil {
						return err
					}
				}
				user, err := a.Session.SignIn(ctx, username, password)
				if err != nil {
					return fmt.Errorf("login failed: %w", err)
				}
				fmt.Printf("Signed in as %s\n", user.Username)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	return cmd
}

func promptCredentials(username string) (string, string, error) {
	in := bufio.NewReader(os.Stdin)
	if username == "" {
		fmt.Print("Username: ")
		line, err := in.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	fmt.Print("Password: ")
	line, err := in.ReadString('\n')
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	return username, strings.TrimSpace(line), nil
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(_ context.Context, a *app.App) error {
				return a.Session.SignOut()
			})
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Verify the stored session with the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				user, err := a.Client.VerifySession(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("%s (id %d)\n", user.Username, user.ID)
				return nil
			})
		},
	}
}

func newHubCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hub",
		Short: "Show the lists you belong to and your totals across them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				lists, err := a.Client.FetchLists(ctx)
				if err != nil {
					return err
				}
				summary, err := a.Loader.Load(ctx, models.Scope{Kind: models.ScopeAll})
				if err != nil {
					return err
				}
				renderLists(os.Stdout, lists)
				renderSummary(os.Stdout, summary)
				return nil
			})
		},
	}
}

// viewFlags are the filter, sort and page parameters shared by the view commands
type viewFlags struct {
	search    string
	kind      string
	status    string
	list      string
	minRating string
	sort      string
	page      int
}

func (f *viewFlags) register(cmd *cobra.Command, defaultSort viewmodel.SortKey) {
	flags := cmd.Flags()
	flags.StringVarP(&f.search, "search", "s", "", "case-insensitive title search")
	flags.StringVar(&f.kind, "kind", viewmodel.All, "media kind (movie, tv, all)")
	flags.StringVar(&f.status, "status", viewmodel.All, "watch status (not_watched, in_progress, completed, all)")
	flags.StringVar(&f.list, "in-list", viewmodel.All, "restrict to one list id")
	flags.StringVar(&f.minRating, "min-rating", viewmodel.All, "minimum external rating")
	flags.StringVar(&f.sort, "sort", string(defaultSort), "sort key")
	flags.IntVarP(&f.page, "page", "p", 1, "page number")
}

// apply sets the view's parameters in the order a user would: filters, sort, page
func (f *viewFlags) apply(vm *viewmodel.ViewModel) error {
	filters := []struct {
		field viewmodel.FilterField
		value string
	}{
		{viewmodel.FilterSearch, f.search},
		{viewmodel.FilterMediaKind, f.kind},
		{viewmodel.FilterWatchStatus, f.status},
		{viewmodel.FilterList, f.list},
		{viewmodel.FilterMinExternalRating, f.minRating},
	}
	for _, p := range filters {
		if err := vm.SetFilter(p.field, p.value); err != nil {
			return err
		}
	}

	key, err := viewmodel.ParseSortKey(f.sort)
	if err != nil {
		return err
	}
	if err := vm.SetSort(key); err != nil {
		return err
	}
	vm.SetPage(f.page)
	return nil
}

func showView(cmd *cobra.Command, scope models.Scope, flags *viewFlags) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		summary, err := a.Loader.Load(ctx, scope)
		if err != nil {
			return err
		}
		if err := flags.apply(a.View); err != nil {
			return err
		}
		renderPage(os.Stdout, a.View.Page(), scope.Kind == models.ScopeList)
		renderSummary(os.Stdout, summary)
		return nil
	})
}

func newHistoryCommand() *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show every title across your lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showView(cmd, models.Scope{Kind: models.ScopeAll}, &flags)
		},
	}
	flags.register(cmd, viewmodel.SortLastUpdatedDesc)
	return cmd
}

func newListCommand() *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "list <list-id>",
		Short: "Show the titles of one list with member averages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID, err := parseID("list id", args[0])
			if err != nil {
				return err
			}
			return showView(cmd, models.ListScope(listID), &flags)
		},
	}
	flags.register(cmd, viewmodel.SortAddedDesc)
	return cmd
}

func newRankingsCommand() *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "rankings",
		Short: "Show the titles you rated, best first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showView(cmd, models.Scope{Kind: models.ScopeRated}, &flags)
		},
	}
	flags.register(cmd, viewmodel.SortRatingDesc)
	return cmd
}

func newRouletteCommand() *cobra.Command {
	var flags viewFlags
	var listID int64
	var accept bool
	cmd := &cobra.Command{
		Use:   "roulette",
		Short: "Pick a random title matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scope := models.Scope{Kind: models.ScopeAll}
			if listID > 0 {
				scope = models.ListScope(listID)
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if _, err := a.Loader.Load(ctx, scope); err != nil {
					return err
				}
				if err := flags.apply(a.View); err != nil {
					return err
				}
				r, ok := a.View.Spin(rand.New(rand.NewSource(time.Now().UnixNano())))
				if !ok {
					return errors.New("no title matches the filters")
				}
				renderRecord(os.Stdout, r)
				if !accept {
					return nil
				}
				// watching starts over, so the rating goes with the old status
				if err := a.Mutator.UpdateStatus(ctx, r.ID, models.StatusInProgress); err != nil {
					return mutationFailure(err)
				}
				fmt.Printf("Marked %s as in progress\n", r.Title)
				return nil
			})
		},
	}
	flags.register(cmd, viewmodel.DefaultSort)
	cmd.Flags().Int64Var(&listID, "list", 0, "spin within one list")
	cmd.Flags().BoolVar(&accept, "accept", false, "mark the pick as in progress")
	return cmd
}

// mutationScope returns the scope a record mutation loads before applying
func mutationScope(listID int64) models.Scope {
	if listID > 0 {
		return models.ListScope(listID)
	}
	return models.Scope{Kind: models.ScopeAll}
}

func runMutation(cmd *cobra.Command, listID int64, mutate func(ctx context.Context, a *app.App) error) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if _, err := a.Loader.Load(ctx, mutationScope(listID)); err != nil {
			return err
		}
		if err := mutate(ctx, a); err != nil {
			return mutationFailure(err)
		}
		renderSummary(os.Stdout, a.Stats.Snapshot())
		return nil
	})
}

// mutationFailure turns a failed mutation into the message shown to the user
func mutationFailure(err error) error {
	var mErr *controllers.MutationError
	if errors.As(err, &mErr) {
		return errors.New(mErr.Message())
	}
	return err
}

func newStatusCommand() *cobra.Command {
	var listID int64
	cmd := &cobra.Command{
		Use:   "status <record-id> <not_watched|in_progress|completed>",
		Short: "Change the watch status of a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("record id", args[0])
			if err != nil {
				return err
			}
			status, err := models.ParseWatchStatus(args[1])
			if err != nil {
				return err
			}
			return runMutation(cmd, listID, func(ctx context.Context, a *app.App) error {
				return a.Mutator.UpdateStatus(ctx, id, status)
			})
		},
	}
	cmd.Flags().Int64Var(&listID, "list", 0, "list holding the record")
	return cmd
}

func newRateCommand() *cobra.Command {
	var listID int64
	cmd := &cobra.Command{
		Use:   "rate <record-id> <1-10|clear>",
		Short: "Rate a completed record or clear its rating",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("record id", args[0])
			if err != nil {
				return err
			}
			var rating *float64
			if args[1] != "clear" {
				v, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("invalid rating %q", args[1])
				}
				rating = &v
			}
			return runMutation(cmd, listID, func(ctx context.Context, a *app.App) error {
				return a.Mutator.UpdateRating(ctx, id, rating)
			})
		},
	}
	cmd.Flags().Int64Var(&listID, "list", 0, "list holding the record")
	return cmd
}

func newAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <list-id> <tmdb-id> <movie|tv>",
		Short: "Add a catalog title to a list",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID, err := parseID("list id", args[0])
			if err != nil {
				return err
			}
			tmdbID, err := parseID("tmdb id", args[1])
			if err != nil {
				return err
			}
			kind, err := models.ParseMediaKind(args[2])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				id, err := a.Loader.AddTitle(ctx, listID, tmdbID, kind)
				if err != nil {
					return err
				}
				fmt.Printf("Added as record %d\n", id)
				return nil
			})
		},
	}
}

func newRemoveCommand() *cobra.Command {
	var byTitle bool
	cmd := &cobra.Command{
		Use:   "remove <list-id> <record-id>",
		Short: "Remove a record from a list",
		Long:  "Remove a record from a list. With --tmdb the second argument is the catalog id.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID, err := parseID("list id", args[0])
			if err != nil {
				return err
			}
			id, err := parseID("id", args[1])
			if err != nil {
				return err
			}
			return runMutation(cmd, listID, func(ctx context.Context, a *app.App) error {
				if byTitle {
					return a.Loader.RemoveTitle(ctx, listID, id)
				}
				return a.Mutator.Remove(ctx, id)
			})
		},
	}
	cmd.Flags().BoolVar(&byTitle, "tmdb", false, "address the record by its catalog id")
	return cmd
}

func newServeCommand() *cobra.Command {
	var scopeArg string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve one view over HTTP with periodic reloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scope, err := parseScope(scopeArg)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return serve(ctx, a, scope)
			})
		},
	}
	cmd.Flags().String("port", "", "dashboard port")
	cmd.Flags().StringVar(&scopeArg, "scope", string(models.ScopeAll), "view scope (all, rated, list:<id>)")
	return cmd
}

func serve(ctx context.Context, a *app.App, scope models.Scope) error {
	logger := a.Logger
	defer a.View.Close()

	// 1. Initial load
	if _, err := a.Loader.Load(ctx, scope); err != nil {
		return err
	}

	// 2. Periodic reload
	sched := scheduler.NewScheduler(a.Loader, a.Config.ReloadSchedule, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 3. HTTP server, stopped when ctx is cancelled by a signal
	server := api.NewServer(a.Config, a.View, a.Stats, a.Loader, a.Mutator, a.Metrics, logger)
	logger.WithField("scope", scope.String()).Info("WhirlWatch dashboard is running")
	if err := server.Start(ctx); err != nil {
		return err
	}

	logger.Info("WhirlWatch stopped")
	return nil
}

func parseScope(s string) (models.Scope, error) {
	if rest, ok := strings.CutPrefix(s, "list:"); ok {
		id, err := parseID("list id", rest)
		if err != nil {
			return models.Scope{}, err
		}
		return models.ListScope(id), nil
	}
	scope := models.Scope{Kind: models.ScopeKind(s)}
	return scope, scope.Validate()
}

func parseID(name, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return id, nil
}
