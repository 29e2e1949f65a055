package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/example/community-roster/internal/client"
)

var rootCmd = &cobra.Command{
	Use:   "rosterctl",
	Short: "Roster CLI",
	Long: `rosterctl talks to the community roster API.
It signs members in, lists the member directory and duty assignments,
shows due reminders, and prints the weekly duty table for the notice board.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("ROSTERCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("server", "s", "http://127.0.0.1:8080", "roster API base URL")
	rootCmd.PersistentFlags().String("token", "", "session token (or ROSTERCTL_TOKEN)")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(membersCmd())
	rootCmd.AddCommand(dutiesCmd())
	rootCmd.AddCommand(remindersCmd())
	rootCmd.AddCommand(exportCmd())
}

func loginCmd() *cobra.Command {
	var email, password string
	var save bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and obtain a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				password = strings.TrimSpace(line)
			}
			api := newClient()
			result, err := api.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if save {
				if err := setEnvValue(filepath.Join(".", ".env"), "ROSTERCTL_TOKEN", result.Token); err != nil {
					return err
				}
				fmt.Println("Saved ROSTERCTL_TOKEN to .env")
			}
			if viper.GetBool("json") {
				return printJSON(result)
			}
			fmt.Printf("Signed in as %s %s (%s)\n", result.Member.FirstName, result.Member.LastName, result.Member.Email)
			fmt.Printf("Dashboard: %s\n", result.Dashboard)
			fmt.Printf("Token: %s\n", result.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "member email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	cmd.Flags().BoolVar(&save, "save", false, "write the token to ./.env")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Session revoked.")
			return nil
		},
	}
}

func membersCmd() *cobra.Command {
	members := &cobra.Command{Use: "members", Short: "Member directory"}
	members.AddCommand(membersListCmd())
	return members
}

func membersListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List members",
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := newClient().ListMembers(cmd.Context())
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(members)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Name", "Email", "Roles"})
			for _, member := range members {
				name := strings.TrimSpace(member.FirstName + " " + member.LastName)
				tw.AppendRow(table.Row{member.ID, name, member.Email, strings.Join(member.Roles, ", ")})
			}
			tw.Render()
			return nil
		},
	}
	return cmd
}

func dutiesCmd() *cobra.Command {
	duties := &cobra.Command{Use: "duties", Short: "Duty assignments"}
	duties.AddCommand(dutiesListCmd())
	return duties
}

func dutiesListCmd() *cobra.Command {
	var category, week, from, to, memberID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List duties",
		RunE: func(cmd *cobra.Command, args []string) error {
			duties, err := newClient().ListDuties(cmd.Context(), client.DutyFilter{
				Category: category,
				Week:     week,
				From:     from,
				To:       to,
				MemberID: memberID,
			})
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(duties)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Category", "Date", "Starts", "Assignees"})
			for _, duty := range duties {
				tw.AppendRow(table.Row{duty.ID, duty.Category, duty.Date, duty.StartsAt, strings.Join(duty.Assignees, ", ")})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "filter by category (meditation, cooking, work_duty)")
	cmd.Flags().StringVar(&week, "week", "", "any date inside the week to list (YYYY-MM-DD)")
	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&memberID, "member", "", "filter by assignee member id")
	return cmd
}

func remindersCmd() *cobra.Command {
	reminders := &cobra.Command{Use: "reminders", Short: "Duty reminders"}
	reminders.AddCommand(remindersDueCmd())
	return reminders
}

func remindersDueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List reminders for duties starting within 15 minutes",
		RunE: func(cmd *cobra.Command, args []string) error {
			reminders, err := newClient().DueReminders(cmd.Context())
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(reminders)
			}
			if len(reminders) == 0 {
				fmt.Println("No reminders due.")
				return nil
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Duty", "Category", "Member", "Starts", "Subject"})
			for _, reminder := range reminders {
				tw.AppendRow(table.Row{reminder.DutyID, reminder.Category, reminder.MemberID, reminder.StartsAt, reminder.Subject})
			}
			tw.Render()
			return nil
		},
	}
	return cmd
}

func exportCmd() *cobra.Command {
	export := &cobra.Command{Use: "export", Short: "Printable roster exports"}
	export.AddCommand(exportWeekCmd())
	return export
}

func exportWeekCmd() *cobra.Command {
	var week string
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print the weekly duty table",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := newClient().ExportWeek(cmd.Context(), week)
			if err != nil {
				return err
			}
			fmt.Print(text)
			return nil
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "any date inside the week to export (YYYY-MM-DD)")
	return cmd
}

// --- helpers ---

func newClient() *client.Client {
	api := client.New(viper.GetString("server"))
	api.Token = viper.GetString("token")
	return api
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setEnvValue(path, key, value string) error {
	var lines []string
	seen := false
	f, err := os.Open(path)
	if err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, key+"=") {
				lines = append(lines, fmt.Sprintf("%s=%s", key, value))
				seen = true
			} else {
				lines = append(lines, line)
			}
		}
		if err := scanner.Err(); err != nil {
			f.Close()
			return err
		}
		f.Close()
	} else if !os.IsNotExist(err) {
		return err
	}
	if !seen {
		lines = append(lines, fmt.Sprintf("%s=%s", key, value))
	}
	content := strings.Join(lines, "\n")
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return os.WriteFile(path, []byte(content), 0o600)
}
