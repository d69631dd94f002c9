package main

import (
	"strconv"

	"github.com/spf13/cobra"

	curalink "github.com/kailas-cloud/curalink/pkg/sdk"
)

func archivesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "archives",
		Short: "List configured archives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			list, err := c.Archives(cmd.Context())
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), list)
			}
			rows := make([][]string, 0, len(list))
			for _, a := range list {
				rows = append(rows, []string{a.ID, a.Description, a.URL})
			}
			return table(cmd.OutOrStdout(), []string{"ID", "DESCRIPTION", "URL"}, rows)
		},
	}
}

func healthCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show gateway health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			h, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), h)
			}
			rows := [][]string{{"status", h.Status}}
			for name, result := range h.Checks {
				rows = append(rows, []string{name, result})
			}
			return table(cmd.OutOrStdout(), []string{"CHECK", "RESULT"}, rows)
		},
	}
}

func patientsCmd(g *globalFlags) *cobra.Command {
	var q curalink.PatientQuery
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Search patients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			res, err := c.Patients(cmd.Context(), q)
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), res.Items)
			}
			rows := make([][]string, 0, len(res.Items))
			for _, p := range res.Items {
				rows = append(rows, []string{
					p.PatientID, p.Name, p.Sex, p.BirthDate, strconv.Itoa(p.StudyCount), p.Issuer,
				})
			}
			if err := table(cmd.OutOrStdout(),
				[]string{"PATIENT ID", "NAME", "SEX", "BIRTH DATE", "STUDIES", "ISSUER"}, rows); err != nil {
				return err
			}
			footer(cmd.OutOrStdout(), len(res.Items), res.Total, res.ArchiveRequests)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.FamilyName, "name", "", "patient family name")
	f.StringVar(&q.PatientID, "id", "", "patient id")
	f.StringVar(&q.Issuer, "issuer", "", "issuer of patient id")
	f.StringVar(&q.Sex, "sex", "", "M, F or O")
	f.StringVar(&q.BirthDate, "birth-date", "", "YYYY-MM-DD")
	f.StringVar(&q.VerificationStatus, "verification-status", "", "patient verification status")
	f.BoolVar(&q.Fuzzy, "fuzzy", false, "fuzzy name matching")
	f.IntVar(&q.Limit, "limit", 0, "maximum number of patients")
	f.StringVar(&q.OrderBy, "order-by", "", "sort key, - prefix for descending")
	f.BoolVar(&q.OnlyWithStudies, "with-studies", false, "only patients with studies")
	f.BoolVar(&q.Merged, "merged", false, "only merged patients")
	return cmd
}

func studiesCmd(g *globalFlags) *cobra.Command {
	var q curalink.StudyQuery
	var patient string
	cmd := &cobra.Command{
		Use:   "studies",
		Short: "Search studies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			var res curalink.Result[curalink.Study]
			if patient != "" {
				res, err = c.PatientStudies(cmd.Context(), patient, q)
			} else {
				res, err = c.Studies(cmd.Context(), q)
			}
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), res.Items)
			}
			rows := make([][]string, 0, len(res.Items))
			for _, s := range res.Items {
				rows = append(rows, []string{
					s.StudyDate, s.StudyTime, s.PatientName, s.PatientID, s.Modality,
					s.Description, s.AccessionNumber, strconv.Itoa(s.NumberOfInstances),
				})
			}
			if err := table(cmd.OutOrStdout(), []string{
				"DATE", "TIME", "PATIENT", "PATIENT ID", "MODALITY", "DESCRIPTION", "ACCESSION", "INSTANCES",
			}, rows); err != nil {
				return err
			}
			footer(cmd.OutOrStdout(), len(res.Items), res.Total, res.ArchiveRequests)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&patient, "patient", "", "list the studies of this patient id")
	f.StringVar(&q.FamilyName, "name", "", "patient family name")
	f.StringVar(&q.PatientID, "id", "", "patient id")
	f.StringVar(&q.Issuer, "issuer", "", "issuer of patient id")
	f.BoolVar(&q.Fuzzy, "fuzzy", false, "fuzzy name matching")
	f.StringVar(&q.AccessionNumber, "accession", "", "accession number")
	f.StringVar(&q.IssuerOfAccessionNumber, "accession-issuer", "", "issuer of accession number")
	f.StringVar(&q.Description, "description", "", "study description")
	f.StringVar(&q.Modality, "modality", "", "modality, All for any")
	f.StringVar(&q.ReportStatus, "report-status", "", "report status")
	f.StringVar(&q.InstitutionName, "institution", "", "institution name")
	f.StringVar(&q.DepartmentName, "department", "", "institutional department name")
	f.StringVar(&q.ReferringPhysician, "referring-physician", "", "referring physician")
	f.StringVar(&q.SendingAET, "sending-aet", "", "sending AE title")
	f.StringVar(&q.StudyDate, "date", "", "YYYY-MM-DD or YYYY-MM-DD-YYYY-MM-DD")
	f.StringVar(&q.StudyTime, "time", "", "HH:MM[:SS]")
	f.StringVar(&q.Received, "received", "", "study received range")
	f.StringVar(&q.Accessed, "accessed", "", "study access range")
	f.IntVar(&q.Limit, "limit", 0, "maximum number of studies")
	f.StringVar(&q.OrderBy, "order-by", "", "sort key, - prefix for descending")
	return cmd
}

func seriesCmd(g *globalFlags) *cobra.Command {
	var q curalink.SeriesQuery
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Search series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			res, err := c.Series(cmd.Context(), q)
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), res.Items)
			}
			rows := make([][]string, 0, len(res.Items))
			for _, s := range res.Items {
				rows = append(rows, []string{
					s.SeriesNumber, s.Modality, s.Description, s.BodyPartExamined,
					s.SeriesDate, strconv.Itoa(s.NumberOfInstances), s.SeriesInstanceUID,
				})
			}
			if err := table(cmd.OutOrStdout(), []string{
				"NUMBER", "MODALITY", "DESCRIPTION", "BODY PART", "DATE", "INSTANCES", "SERIES UID",
			}, rows); err != nil {
				return err
			}
			footer(cmd.OutOrStdout(), len(res.Items), res.Total, res.ArchiveRequests)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.FamilyName, "name", "", "patient family name")
	f.StringVar(&q.PatientID, "id", "", "patient id")
	f.BoolVar(&q.Fuzzy, "fuzzy", false, "fuzzy name matching")
	f.StringVar(&q.StudyInstanceUID, "study", "", "study instance UID")
	f.StringVar(&q.SeriesInstanceUID, "series-uid", "", "series instance UID")
	f.StringVar(&q.SeriesNumber, "number", "", "series number")
	f.StringVar(&q.Description, "description", "", "series description")
	f.StringVar(&q.Modality, "modality", "", "modality, All for any")
	f.StringVar(&q.BodyPartExamined, "body-part", "", "body part examined")
	f.StringVar(&q.PerformingPhysician, "performing-physician", "", "performing physician")
	f.StringVar(&q.SeriesDate, "date", "", "YYYY-MM-DD")
	f.StringVar(&q.SeriesTime, "time", "", "HH:MM[:SS]")
	f.IntVar(&q.Limit, "limit", 0, "maximum number of series")
	f.StringVar(&q.OrderBy, "order-by", "", "sort key, - prefix for descending")
	return cmd
}

func worklistCmd(g *globalFlags) *cobra.Command {
	var q curalink.WorklistQuery
	cmd := &cobra.Command{
		Use:     "mwl",
		Aliases: []string{"worklist"},
		Short:   "Search the modality worklist",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			res, err := c.Worklist(cmd.Context(), q)
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), res.Items)
			}
			rows := make([][]string, 0, len(res.Items))
			for _, w := range res.Items {
				rows = append(rows, []string{
					w.StartDate, w.StartTime, w.PatientName, w.PatientID, w.Modality, w.StationAET, w.Description,
				})
			}
			if err := table(cmd.OutOrStdout(), []string{
				"DATE", "TIME", "PATIENT", "PATIENT ID", "MODALITY", "STATION", "DESCRIPTION",
			}, rows); err != nil {
				return err
			}
			footer(cmd.OutOrStdout(), len(res.Items), res.Total, res.ArchiveRequests)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.FamilyName, "name", "", "patient family name")
	f.StringVar(&q.PatientID, "id", "", "patient id")
	f.StringVar(&q.AccessionNumber, "accession", "", "accession number")
	f.StringVar(&q.Issuer, "issuer", "", "issuer of patient id")
	f.StringVar(&q.Modality, "modality", "", "modality")
	f.StringVar(&q.ScheduledStationAET, "station", "", "scheduled station AE title")
	f.StringVar(&q.StartTime, "start-time", "", "scheduled start time HH:MM")
	f.IntVar(&q.Limit, "limit", 0, "maximum number of items")
	return cmd
}
