package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	curalink "github.com/kailas-cloud/curalink/pkg/sdk"
)

func hospitalsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "hospitals [id]",
		Short: "List hospitals derived from the archive, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			var list []curalink.Hospital
			if len(args) == 1 {
				id, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("hospital id must be a number: %w", err)
				}
				h, err := c.Hospital(cmd.Context(), g.service, id)
				if err != nil {
					return err
				}
				list = []curalink.Hospital{h}
			} else if list, err = c.Hospitals(cmd.Context(), g.service); err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), list)
			}
			rows := make([][]string, 0, len(list))
			for _, h := range list {
				last := ""
				if h.LastStudyDate != nil {
					last = *h.LastStudyDate
				}
				rows = append(rows, []string{
					strconv.Itoa(h.ID), h.Name, strconv.Itoa(h.StudyCount), strconv.Itoa(h.PatientCount),
					strings.Join(h.Modalities, ","), last,
				})
			}
			return table(cmd.OutOrStdout(),
				[]string{"ID", "NAME", "STUDIES", "PATIENTS", "MODALITIES", "LAST STUDY"}, rows)
		},
	}
}

func dashboardCmd(g *globalFlags) *cobra.Command {
	var hospital string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show archive statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			st, err := c.Dashboard(cmd.Context(), g.service, hospital)
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), st)
			}
			w := cmd.OutOrStdout()
			if err := table(w, []string{"METRIC", "VALUE"}, [][]string{
				{"studies", strconv.Itoa(st.TotalStudies)},
				{"patients", strconv.Itoa(st.TotalPatients)},
				{"series", strconv.Itoa(st.TotalSeries)},
				{"instances", strconv.Itoa(st.TotalInstances)},
			}); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(w)
			rows := make([][]string, 0, len(st.StudiesByModality))
			for _, m := range st.StudiesByModality {
				rows = append(rows, []string{m.Modality, strconv.Itoa(m.Count)})
			}
			return table(w, []string{"MODALITY", "STUDIES"}, rows)
		},
	}
	cmd.Flags().StringVar(&hospital, "hospital", "", "restrict to one hospital id")
	return cmd
}

func configCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "config {devices|aes|hl7apps|export-rules} [name]",
		Short:     "Print archive configuration",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{
			string(curalink.ConfigDevices), string(curalink.ConfigAEs),
			string(curalink.ConfigHL7Apps), string(curalink.ConfigExportRules),
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			raw, err := c.Config(cmd.Context(), g.service, curalink.ConfigKind(args[0]), name)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), json.RawMessage(raw))
		},
	}
}

func quickCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "quick <term>",
		Short: "Quick search patients and studies by name or id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			res, err := c.QuickSearch(cmd.Context(), g.service, args[0])
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), res)
			}
			rows := make([][]string, 0, len(res.Patients)+len(res.Studies))
			for _, p := range res.Patients {
				rows = append(rows, []string{"patient", p.PatientID, p.PatientName, "", ""})
			}
			for _, s := range res.Studies {
				rows = append(rows, []string{"study", s.PatientID, s.PatientName, s.StudyDate, s.Description})
			}
			return table(cmd.OutOrStdout(), []string{"KIND", "PATIENT ID", "NAME", "DATE", "DESCRIPTION"}, rows)
		},
	}
}

func askCmd(g *globalFlags) *cobra.Command {
	var conversation string
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the archive assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			ans, err := c.Ask(cmd.Context(), curalink.Question{
				Question:       strings.Join(args, " "),
				ConversationID: conversation,
			})
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), ans)
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(w, ans.Answer)
			if ans.ConversationID != "" {
				_, _ = fmt.Fprintf(w, "\n[%s, conversation %s]\n", ans.Model, ans.ConversationID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&conversation, "conversation", "", "continue a stored conversation")
	return cmd
}

func usageCmd(g *globalFlags) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show assistant token usage against the budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			rep, err := c.Usage(cmd.Context(), curalink.UsagePeriod(period))
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), rep)
			}
			limit, left := "unlimited", "-"
			if rep.Budget.TokensLimit > 0 {
				limit = strconv.FormatInt(rep.Budget.TokensLimit, 10)
				left = strconv.FormatInt(rep.Budget.TokensRemaining, 10)
			}
			return table(cmd.OutOrStdout(), []string{"METRIC", "VALUE"}, [][]string{
				{"period", string(rep.Period)},
				{"provider", rep.Provider},
				{"used", strconv.FormatInt(rep.TokensUsed, 10)},
				{"limit", limit},
				{"remaining", left},
				{"exhausted", strconv.FormatBool(rep.Budget.Exhausted)},
				{"resets", rep.Budget.ResetsAt.Format(time.RFC3339)},
			})
		},
	}
	cmd.Flags().StringVar(&period, "period", "day", "day or month")
	return cmd
}
