package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"pacs-study-browser/cmd/bootstrap"
	"pacs-study-browser/internal/delivery/dto"
	"pacs-study-browser/internal/delivery/http/middleware"
	"pacs-study-browser/internal/domain/entity"
	"pacs-study-browser/internal/usecase"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Query the archive once and print the results grouped by patient",
	Example: `  pacs-study-browser search --aet DCM4CHEE --patient-name "DOE^*"
  pacs-study-browser search --tab mwl --aet DCM4CHEE --modality CT --all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		archiveURL, _ := cmd.Flags().GetString("archive-url")
		tab, _ := cmd.Flags().GetString("tab")
		all, _ := cmd.Flags().GetBool("all")
		asJSON, _ := cmd.Flags().GetBool("json")
		count, _ := cmd.Flags().GetBool("count")

		req := dto.FilterRequest{}
		req.Aet, _ = cmd.Flags().GetString("aet")
		req.Limit, _ = cmd.Flags().GetInt("limit")
		req.Offset, _ = cmd.Flags().GetInt("offset")
		req.OrderBy, _ = cmd.Flags().GetString("orderby")
		req.FuzzyMatching, _ = cmd.Flags().GetBool("fuzzy")
		req.PatientName, _ = cmd.Flags().GetString("patient-name")
		req.PatientID, _ = cmd.Flags().GetString("patient-id")
		req.AccessionNumber, _ = cmd.Flags().GetString("accession")
		req.StudyDate, _ = cmd.Flags().GetString("study-date")
		req.ModalitiesInStudy, _ = cmd.Flags().GetString("modality")
		req.Modality = req.ModalitiesInStudy
		if cmd.Flags().Changed("size-range") {
			sizeRange, _ := cmd.Flags().GetString("size-range")
			req.StudySizeInKB = &sizeRange
		}

		usecases, err := bootstrap.NewCLI(archiveURL)
		if err != nil {
			return err
		}

		ctx := middleware.WithPrincipal(context.Background(), middleware.Principal{
			SessionID: "cli",
			UserID:    currentUser(),
		})
		studies := usecases.Study

		// the directory only feeds the filter panel; a search works without it
		if _, err := studies.Navigate(ctx, entity.Tab(tab)); err != nil && !errors.Is(err, usecase.ErrDirectoryLoadFailed) {
			return err
		}
		if _, err := studies.UpdateFilter(ctx, &req); err != nil {
			return err
		}

		if count {
			quantity, err := studies.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Println(quantity.Text)
			return nil
		}

		page, err := studies.Search(ctx)
		for err == nil && all && page.MoreStudies {
			page, err = studies.NextPage(ctx)
		}
		if err != nil {
			return err
		}

		if asJSON {
			data, err := json.MarshalIndent(page.Patients, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal results: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}
		printPatients(page)
		return nil
	},
}

func init() {
	searchCmd.Flags().String("archive-url", "", "archive base URL (default from ARCHIVE_URL)")
	searchCmd.Flags().String("tab", string(entity.TabStudy), "what to search: study, patient or mwl")
	searchCmd.Flags().String("aet", "", "calling AE title (required)")
	searchCmd.Flags().Int("limit", entity.DefaultLimit, "page size")
	searchCmd.Flags().Int("offset", 0, "first row")
	searchCmd.Flags().String("orderby", "", "sort order, e.g. -StudyDate")
	searchCmd.Flags().Bool("fuzzy", false, "fuzzy person name matching")
	searchCmd.Flags().String("patient-name", "", "PatientName")
	searchCmd.Flags().String("patient-id", "", "PatientID")
	searchCmd.Flags().String("accession", "", "AccessionNumber")
	searchCmd.Flags().String("study-date", "", "StudyDate, YYYYMMDD or a range")
	searchCmd.Flags().String("modality", "", "modality")
	searchCmd.Flags().String("size-range", entity.DefaultStudySizeInKB, "StudySizeInKB range MIN-MAX, empty for any size")
	searchCmd.Flags().Bool("all", false, "keep fetching pages until the archive has no more")
	searchCmd.Flags().Bool("count", false, "print the number of matches only")
	searchCmd.Flags().Bool("json", false, "output as JSON")
	_ = searchCmd.MarkFlagRequired("aet")
}

func printPatients(page *dto.StudyPageResponse) {
	for _, msg := range page.Messages {
		fmt.Fprintf(os.Stderr, "%s: %s\n", msg.Level, msg.Text)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	for _, patient := range page.Patients {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			patient.Attrs.String(entity.TagPatientName),
			patient.Attrs.String(entity.TagPatientID),
			patient.Attrs.String(entity.TagPatientBirthDate),
			patient.Attrs.String(entity.TagPatientSex),
		)
		for _, study := range patient.Studies {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n",
				study.Offset+1,
				study.Attrs.String(entity.TagStudyDate),
				study.Attrs.String(entity.TagAccessionNumber),
				study.Attrs.String(entity.TagModalitiesInStudy),
				study.Attrs.String(entity.TagStudyDescription),
			)
		}
	}
	if page.MoreStudies {
		fmt.Fprintln(w, "more results available, use --offset or --all")
	}
}

func currentUser() string {
	if u := strings.TrimSpace(os.Getenv("USER")); u != "" {
		return u
	}
	return "cli"
}
