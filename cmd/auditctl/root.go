package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ginkit/internal/auth"
	"ginkit/internal/codec"
	"ginkit/internal/httpjson"
	"ginkit/internal/models"
	"ginkit/internal/pagination"
)

type rootOptions struct {
	host   string
	token  string
	output string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "auditctl",
		Short:         "Inspect the ginkit audit trail",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// flag > env > default
			if !cmd.Flags().Changed("host") {
				if v := os.Getenv("AUDITCTL_HOST"); v != "" {
					opts.host = v
				}
			}
			if !cmd.Flags().Changed("token") {
				if v := os.Getenv("AUDITCTL_TOKEN"); v != "" {
					opts.token = v
				}
			}
			if opts.output != "table" && opts.output != "json" {
				return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", opts.output)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.host, "host", "http://localhost:8080", "API host URL")
	root.PersistentFlags().StringVar(&opts.token, "token", "", "Bearer token")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format (table, json)")

	root.AddCommand(newTokenCmd(opts), newEntriesCmd(opts), newLogsCmd(opts))
	return root
}

func (o *rootOptions) client() *httpjson.Client {
	var clientOpts []httpjson.Option
	if o.token != "" {
		clientOpts = append(clientOpts, httpjson.WithBearerToken(o.token))
	}
	return httpjson.NewClient(o.host+"/api/v1", &http.Client{Timeout: 30 * time.Second}, clientOpts...)
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Request an access token with the password grant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := url.Values{
				"grant_type": {auth.GrantTypePassword},
				"username":   {username},
				"password":   {password},
			}
			tok, err := httpjson.PostForm[auth.Token](cmd.Context(), opts.client(), "/token", form)
			if err != nil {
				return err
			}
			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), tok)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), tok.AccessToken)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "User name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newEntriesCmd(opts *rootOptions) *cobra.Command {
	var (
		table, action, user, from, to string
		page, pageSize                int
	)
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List audit entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := url.Values{}
			setIf(q, "table", table)
			setIf(q, "action", action)
			setIf(q, "user_id", user)
			setIf(q, "from", from)
			setIf(q, "to", to)
			if page > 0 {
				q.Set("page", strconv.Itoa(page))
			}
			if pageSize > 0 {
				q.Set("page_size", strconv.Itoa(pageSize))
			}

			path := "/audit"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}
			result, err := httpjson.Get[pagination.PageResponse[models.AuditEntry]](cmd.Context(), opts.client(), path)
			if err != nil {
				return err
			}
			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), result)
			}
			return printEntries(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&table, "table", "", "Entity type name")
	cmd.Flags().StringVar(&action, "action", "", "Create, Update or Delete")
	cmd.Flags().StringVar(&user, "user", "", "Acting user ID")
	cmd.Flags().StringVar(&from, "from", "", "Inclusive lower bound (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Exclusive upper bound (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Page size")
	return cmd
}

func newLogsCmd(opts *rootOptions) *cobra.Command {
	var (
		level string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List recent log records (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := url.Values{}
			setIf(q, "level", level)
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			path := "/logs"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}
			result, err := httpjson.Get[struct {
				Logs []models.LogRecord `json:"logs"`
			}](cmd.Context(), opts.client(), path)
			if err != nil {
				return err
			}
			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), result.Logs)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "TIME\tLEVEL\tLOGGER\tMESSAGE")
			for _, r := range result.Logs {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.CreatedAt.Format(time.RFC3339), r.Level, r.Logger, r.Message)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&level, "level", "", "Minimum level")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records")
	return cmd
}

func printEntries(out io.Writer, result pagination.PageResponse[models.AuditEntry]) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTIME\tACTION\tTABLE\tUSER")
	for _, e := range result.Data {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.DateCreated.Format(time.RFC3339), e.Action, e.TableName, e.UserID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "page %d of %d (%d entries)\n", result.Page, result.TotalPages, result.TotalItems)
	return err
}

func printJSON(out io.Writer, v any) error {
	data, err := codec.JSON.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
