package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"stellar/internal/config"
	"stellar/internal/models"
	"stellar/internal/services"
	"stellar/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()
		logger.Info("schema up to date", zap.String("driver", dbDriver))
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var (
	seedEmail    string
	seedUsername string
	seedPassword string
)

var seedUserCmd = &cobra.Command{
	Use:   "seed-user",
	Short: "Create a verified user for local development",
	RunE:  runSeedUser,
}

func runSeedUser(cmd *cobra.Command, args []string) error {
	email := strings.ToLower(strings.TrimSpace(seedEmail))
	if email == "" || seedUsername == "" || seedPassword == "" {
		return errors.New("--email, --username and --password are required")
	}
	st, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer closeFn()
	ctx := cmd.Context()

	if existing, err := st.GetUserByEmail(ctx, email); err == nil {
		if !existing.IsEmailVerified {
			if err := st.MarkEmailVerified(ctx, existing.ID); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %s already exists (id %s), marked verified\n", email, existing.ID)
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Username:        seedUsername,
		Email:           email,
		PasswordHash:    string(hashed),
		IsActive:        true,
		IsEmailVerified: true,
	}
	if err := st.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("username %q is taken", seedUsername)
		}
		return err
	}
	logger.Info("seeded user", zap.String("user_id", u.ID), zap.String("email", email))
	fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %s)\n", email, u.ID)
	return nil
}

var emailLike string

var deleteUsersCmd = &cobra.Command{
	Use:   "delete-users",
	Short: "Delete users (and their records) whose email matches a LIKE pattern",
	Example: `  stellarctl delete-users --email-like 'test%@example.com'`,
	RunE: runDeleteUsers,
}

func runDeleteUsers(cmd *cobra.Command, args []string) error {
	if strings.Trim(emailLike, "%_ ") == "" {
		return errors.New("--email-like must contain more than wildcards")
	}
	st, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer closeFn()

	n, err := st.DeleteUsersByEmailLike(cmd.Context(), emailLike)
	if err != nil {
		return err
	}
	logger.Info("deleted users", zap.String("pattern", emailLike), zap.Int64("count", n))
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d user(s)\n", n)
	return nil
}

var (
	recordsEmail string
	recordsLimit int
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Show per-type record counts and the latest records of a user",
	RunE:  runRecords,
}

func runRecords(cmd *cobra.Command, args []string) error {
	if recordsEmail == "" {
		return errors.New("--email is required")
	}
	st, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer closeFn()
	ctx := cmd.Context()

	u, err := st.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(recordsEmail)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no user with email %s", recordsEmail)
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "user %s (%s) verified=%t\n", u.Username, u.ID, u.IsEmailVerified)
	for _, typ := range []models.RecordType{"", models.RecordMood, models.RecordSpark, models.RecordThought} {
		n, err := st.CountRecords(ctx, u.ID, typ)
		if err != nil {
			return err
		}
		label := string(typ)
		if label == "" {
			label = "total"
		}
		fmt.Fprintf(out, "  %-8s %d\n", label, n)
	}

	records, _, err := st.ListRecords(ctx, u.ID, store.RecordFilter{Limit: recordsLimit})
	if err != nil {
		return err
	}
	key, err := config.Config{Auth: config.AuthConfig{EncryptionKey: os.Getenv("ENCRYPTION_KEY")}}.EncryptionKeyBytes()
	if err != nil {
		return err
	}
	enc, err := services.NewEncryptionService(key)
	if err != nil {
		return err
	}
	if err := enc.DecryptRecords(records); err != nil {
		logger.Warn("records left sealed", zap.Error(err))
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tTYPE\tCOLOR\tCONTENT")
	for _, r := range records {
		color := "-"
		if r.ColorHex != nil {
			color = *r.ColorHex
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.CreatedAt.Format(time.DateTime), r.Type, color, preview(r.Content, 40))
	}
	return tw.Flush()
}

func preview(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func init() {
	seedUserCmd.Flags().StringVar(&seedEmail, "email", "", "email address")
	seedUserCmd.Flags().StringVar(&seedUsername, "username", "", "username")
	seedUserCmd.Flags().StringVar(&seedPassword, "password", "", "plain-text password")

	deleteUsersCmd.Flags().StringVar(&emailLike, "email-like", "", "SQL LIKE pattern matched against email")

	recordsCmd.Flags().StringVar(&recordsEmail, "email", "", "email of the user to inspect")
	recordsCmd.Flags().IntVar(&recordsLimit, "limit", 10, "number of latest records to show")
}
