package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Makepad-fr/transmit/internal/model"
	"github.com/Makepad-fr/transmit/internal/source"
	"github.com/Makepad-fr/transmit/internal/ui"
)

// now is replaced in tests.
var now = time.Now

func today() model.Timestamp {
	y, m, d := now().Date()
	return model.NewTimestamp(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func parseDate(flag, s string) (model.Timestamp, error) {
	if s == "" || s == "today" {
		return today(), nil
	}
	ts, err := model.ParseTimestamp(s)
	if err != nil {
		return model.Timestamp{}, usagef("--%s: %v", flag, err)
	}
	return ts, nil
}

// draftFlags binds every editable field of a draft.
type draftFlags struct {
	fs       *pflag.FlagSet
	strs     map[string]*string
	date     string
	docs     []string
	library  []string
	fromFile string
}

// draftFields maps flag names to the draft field they set.
var draftFields = []struct {
	flag, def, usage string
	field            func(*model.Draft) *string
}{
	{"title", "", "transmittal title", func(d *model.Draft) *string { return &d.Title }},
	{"type", "Drawing", "transmittal type: Drawing or Documents", func(d *model.Draft) *string { return &d.TransmittalType }},
	{"department", "", "issuing department", func(d *model.Draft) *string { return &d.Department }},
	{"design-stage", "", "design stage", func(d *model.Draft) *string { return &d.DesignStage }},
	{"send-to", "Client", "recipient role: Client, Contractor, Consultant, ...", func(d *model.Draft) *string { return &d.SendTo }},
	{"salutation", "Mr.", "recipient salutation", func(d *model.Draft) *string { return &d.Salutation }},
	{"recipient", "", "recipient name", func(d *model.Draft) *string { return &d.RecipientName }},
	{"sender", "", "sender name", func(d *model.Draft) *string { return &d.SenderName }},
	{"designation", "", "sender designation", func(d *model.Draft) *string { return &d.SenderDesignation }},
	{"send-mode", model.SendModeSoftcopy, "Softcopy or Hardcopy", func(d *model.Draft) *string { return &d.SendMode }},
	{"project", "", "project name", func(d *model.Draft) *string { return &d.ProjectName }},
	{"purpose", "", "purpose of issue", func(d *model.Draft) *string { return &d.Purpose }},
	{"remarks", "", "remarks", func(d *model.Draft) *string { return &d.Remarks }},
}

func bindDraftFlags(fs *pflag.FlagSet) *draftFlags {
	f := &draftFlags{fs: fs, strs: make(map[string]*string, len(draftFields))}
	for _, df := range draftFields {
		f.strs[df.flag] = fs.String(df.flag, df.def, df.usage)
	}
	fs.StringVar(&f.date, "date", "today", "transmittal date (YYYY-MM-DD)")
	fs.StringArrayVar(&f.docs, "doc", nil, `document line "NO|Title|revision|copies|action" (repeatable)`)
	fs.StringSliceVar(&f.library, "from-library", nil, "append library documents by number or id (see transmit docs)")
	fs.StringVar(&f.fromFile, "from-file", "", "read the draft from a JSON file; other flags override it")
	return f
}

// apply writes flags into d. With all unset, only flags given on the command
// line are applied.
func (f *draftFlags) apply(d *model.Draft, all bool) error {
	if f.fromFile != "" {
		b, err := os.ReadFile(f.fromFile)
		if err != nil {
			return fmt.Errorf("read draft: %w", err)
		}
		if err := json.Unmarshal(b, d); err != nil {
			return usagef("parse %s: %v", f.fromFile, err)
		}
	}
	set := func(name string) bool {
		return f.fs.Changed(name) || (all && f.fromFile == "")
	}
	for _, df := range draftFields {
		if set(df.flag) {
			*df.field(d) = strings.TrimSpace(*f.strs[df.flag])
		}
	}
	if set("date") {
		ts, err := parseDate("date", f.date)
		if err != nil {
			return err
		}
		d.TransmittalDate = ts
	}
	if f.fs.Changed("doc") {
		docs := make([]model.DocumentItem, 0, len(f.docs))
		for _, s := range f.docs {
			doc, err := parseDoc(s)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		d.Documents = docs
	}
	if len(f.library) > 0 {
		picked, err := source.DefaultLibrary().Resolve(f.library)
		if err != nil {
			return err
		}
		d.Documents = appendNew(d.Documents, picked)
	}
	return nil
}

// appendNew appends the picked lines whose document number is not listed yet.
func appendNew(docs, picked []model.DocumentItem) []model.DocumentItem {
	out := slices.Clone(docs)
	for _, p := range picked {
		if !slices.ContainsFunc(out, func(d model.DocumentItem) bool { return strings.EqualFold(d.DocumentNo, p.DocumentNo) }) {
			out = append(out, p)
		}
	}
	return out
}

// parseDoc reads "NO|Title|revision|copies|action". Revision defaults to 0,
// copies to 1 and action to "For approval".
func parseDoc(s string) (model.DocumentItem, error) {
	parts := strings.Split(s, "|")
	if len(parts) < 2 || len(parts) > 5 {
		return model.DocumentItem{}, usagef("--doc %q: want NO|Title[|revision[|copies[|action]]]", s)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	doc := model.DocumentItem{DocumentNo: parts[0], Title: parts[1], Copies: 1, Action: model.DefaultAction}
	if doc.DocumentNo == "" || doc.Title == "" {
		return model.DocumentItem{}, usagef("--doc %q: number and title are required", s)
	}
	num := func(i int, name string, dst *int) error {
		if len(parts) <= i || parts[i] == "" {
			return nil
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return usagef("--doc %q: %s must be a non-negative number", s, name)
		}
		*dst = n
		return nil
	}
	if err := num(2, "revision", &doc.Revision); err != nil {
		return model.DocumentItem{}, err
	}
	if err := num(3, "copies", &doc.Copies); err != nil {
		return model.DocumentItem{}, err
	}
	if len(parts) == 5 && parts[4] != "" {
		doc.Action = parts[4]
	}
	return doc, nil
}

func newAddCmd() *cobra.Command {
	var f *draftFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a draft transmittal",
		Args:  exactArgs(0, "no arguments"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var d model.Draft
			if err := f.apply(&d, true); err != nil {
				return err
			}
			t, err := envFrom(cmd).store.Create(cmd.Context(), d)
			if err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("created draft %s (%d docs)", t.ID, t.DocumentCount))
			return nil
		},
	}
	f = bindDraftFlags(cmd.Flags())
	return cmd
}

func newEditCmd() *cobra.Command {
	var f *draftFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a draft",
		Long: "edit changes only the fields given on the command line. --doc replaces the whole document list;\n" +
			"--from-library appends to it.",
		Args:  exactArgs(1, "a transmittal id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := envFrom(cmd).store
			cur, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !cur.Editable() {
				return fmt.Errorf("edit %s: %w", cur.ID, source.ErrNotDraft)
			}
			d := cur.Draft
			if err := f.apply(&d, false); err != nil {
				return err
			}
			t, err := st.Update(cmd.Context(), cur.ID, d)
			if err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "updated "+t.ID)
			return nil
		},
	}
	f = bindDraftFlags(cmd.Flags())
	return cmd
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a draft",
		Args:    exactArgs(1, "a transmittal id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := envFrom(cmd).store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "deleted "+args[0])
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <id>",
		Short: "Assign a transmittal number to a draft",
		Args:  exactArgs(1, "a transmittal id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := envFrom(cmd).store.Generate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("generated %s for %s", t.TransmittalNumber, t.ID))
			return nil
		},
	}
}

func newDuplicateCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Copy a transmittal into a new draft",
		Args:  exactArgs(1, "a transmittal id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := envFrom(cmd).store.Duplicate(cmd.Context(), args[0], source.DuplicateMode(mode))
			if err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("duplicated %s as draft %s (%s)", args[0], t.ID, t.SendMode))
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(source.DuplicateOpposite),
		"send mode of the copy: opposite (flip Softcopy/Hardcopy) or same")
	return cmd
}

func newSendCmd() *cobra.Command {
	var (
		person  string
		date    string
		notSent bool
	)
	cmd := &cobra.Command{
		Use:   "send <id>",
		Short: "Record that a transmittal went out",
		Args:  exactArgs(1, "a transmittal id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := parseDate("date", date)
			if err != nil {
				return err
			}
			status := model.SentStatusSent
			if notSent {
				status = model.SentStatusNotSent
			}
			d := model.SendDetails{DeliveryPerson: person, SendDate: &ts}
			if err := envFrom(cmd).store.MarkSent(cmd.Context(), args[0], d, status); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("%s: %s by %s", args[0], status, person))
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&person, "delivery-person", "Me", "who delivers: Receptionist, Me or Other")
	fs.StringVar(&date, "date", "today", "send date (YYYY-MM-DD)")
	fs.BoolVar(&notSent, "not-sent", false, "record the details without marking it sent")
	return cmd
}

func newReceiveCmd() *cobra.Command {
	var (
		date        string
		clock       string
		receipt     string
		notReceived bool
	)
	cmd := &cobra.Command{
		Use:   "receive <id>",
		Short: "Record the recipient's acknowledgement",
		Args:  exactArgs(1, "a transmittal id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := parseDate("date", date)
			if err != nil {
				return err
			}
			if clock != "" {
				if _, err := time.Parse("15:04", clock); err != nil {
					return usagef("--time %q: want HH:MM", clock)
				}
			}
			e := envFrom(cmd)
			d := model.ReceiveDetails{ReceivedDate: &ts, ReceivedTime: clock}
			if receipt != "" {
				if d.ReceiptFile, err = uploadReceipt(cmd.Context(), e.store, receipt); err != nil {
					return err
				}
			}
			status := model.ReceivedStatusReceived
			if notReceived {
				status = model.ReceivedStatusNot
			}
			if err := e.store.MarkReceived(cmd.Context(), args[0], d, status); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("%s: %s", args[0], status))
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&date, "date", "today", "received date (YYYY-MM-DD)")
	fs.StringVar(&clock, "time", "", "received time (HH:MM)")
	fs.StringVar(&receipt, "receipt", "", "signed receipt to attach (image or PDF)")
	fs.BoolVar(&notReceived, "not-received", false, "record the details without marking it received")
	return cmd
}

// uploadReceipt sends the file at path through the store and returns the
// data URL to record with the receipt.
func uploadReceipt(ctx context.Context, st source.Store, path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read receipt: %w", err)
	}
	r, err := st.UploadReceipt(ctx, path, b)
	if err != nil {
		return "", err
	}
	return r.DataURL(), nil
}
