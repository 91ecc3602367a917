package stringsconv_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
	"howett.net/plist"

	"github.com/loopcontext/stringsconv"
	"github.com/loopcontext/stringsconv/internal/atomicfile"
	"github.com/loopcontext/stringsconv/internal/plistsrc"
	"github.com/loopcontext/stringsconv/internal/textenc"
)

type mockObserver struct {
	malformed []string
	missing   []string
	unsorted  []string
}

func (o *mockObserver) OnMalformedLine(line int, text string) {
	o.malformed = append(o.malformed, text)
}

func (o *mockObserver) OnMissingKey(line int, key string) {
	o.missing = append(o.missing, key)
}

func (o *mockObserver) OnUnsortedKey(key string) {
	o.unsorted = append(o.unsorted, key)
}

const researchKitMaster = `/* Consent */
"CONSENT_NAME_TITLE" = "Consent";
"CONSENT_REVIEW_TITLE" = "Review";

/* Buttons */
"BUTTON_NEXT" = "Next";
"BUTTON_SKIP" = "Skip this question";
`

var _ = Describe("Merger", func() {
	var (
		observer *mockObserver
		merger   *stringsconv.Merger
	)

	BeforeEach(func() {
		observer = &mockObserver{}
		merger = stringsconv.NewMerger(stringsconv.Config{Observer: observer})
	})

	merge := func(master string, target stringsconv.Table) (string, stringsconv.Report) {
		out, report := merger.MergeLines(stringsconv.SplitLines(master), target)
		return strings.Join(out, ""), report
	}

	It("orders target keys after the master file", func() {
		out, report := merge(researchKitMaster, stringsconv.Table{
			"BUTTON_SKIP":          "Omitir esta pregunta",
			"BUTTON_NEXT":          "Siguiente",
			"CONSENT_REVIEW_TITLE": "Revisar",
			"CONSENT_NAME_TITLE":   "Consentimiento",
		})
		Expect(out).To(Equal(`/* Consent */
"CONSENT_NAME_TITLE" = "Consentimiento";
"CONSENT_REVIEW_TITLE" = "Revisar";

/* Buttons */
"BUTTON_NEXT" = "Siguiente";
"BUTTON_SKIP" = "Omitir esta pregunta";
`))
		Expect(report.Merged).To(Equal(4))
		Expect(report.Clean()).To(BeTrue())
		Expect(report.Unsorted).To(BeEmpty())
	})

	It("keeps every directive line in its relative order", func() {
		out, _ := merge(researchKitMaster, stringsconv.Table{})
		Expect(stringsconv.SplitLines(out)).To(Equal([]string{"/* Consent */\n", "\n", "/* Buttons */\n"}))
		Expect(observer.missing).To(ConsistOf("CONSENT_NAME_TITLE", "CONSENT_REVIEW_TITLE", "BUTTON_NEXT", "BUTTON_SKIP"))
	})

	It("appends keys unknown to the master after the unsorted marker", func() {
		out, report := merge(researchKitMaster, stringsconv.Table{
			"BUTTON_NEXT": "Siguiente",
			"NEW_ZETA":    "z",
			"NEW_ALPHA":   "a",
		})
		Expect(out).To(HaveSuffix("\"BUTTON_NEXT\" = \"Siguiente\";\n\n\n/* Unsorted */\n\"NEW_ALPHA\" = \"a\";\n\"NEW_ZETA\" = \"z\";\n"))
		Expect(report.Unsorted).To(Equal([]string{"NEW_ALPHA", "NEW_ZETA"}))
		Expect(observer.unsorted).To(Equal(report.Unsorted))
		Expect(strings.Count(out, "BUTTON_NEXT")).To(Equal(1))
	})

	It("reports malformed lines and keeps going", func() {
		out, report := merge("\"A\" = \"a\" \"b\";\n\"B\" = \"b\";\n", stringsconv.Table{"B": "bee"})
		Expect(out).To(Equal("\"B\" = \"bee\";\n"))
		Expect(report.MalformedLines).To(Equal([]int{1}))
		Expect(observer.malformed).To(Equal([]string{`"A" = "a" "b";`}))
	})

	It("produces the documented end-to-end output", func() {
		out, report := merge("\"A\" = \"x\";\n/* c */\n\"B\" = \"y\";\n", stringsconv.Table{
			"A": `hello "world"`,
			"C": "extra",
		})
		Expect(out).To(Equal("\"A\" = \"hello \\\"world\\\"\";\n/* c */\n\n\n/* Unsorted */\n\"C\" = \"extra\";\n"))
		Expect(report.MissingKeys).To(Equal([]string{"B"}))
	})

	table.DescribeTable("escaping target values",
		func(value string, emitted string) {
			out, _ := merge("\"K\" = \"master\";\n", stringsconv.Table{"K": value})
			Expect(out).To(Equal(`"K" = "` + emitted + "\";\n"))
			Expect(stringsconv.Unescape(emitted)).To(Equal(value))
		},
		table.Entry("backslash", `C:\tmp`, `C:\\tmp`),
		table.Entry("double quote", `"quoted"`, `\"quoted\"`),
		table.Entry("newline", "a\nb", `a\nb`),
		table.Entry("carriage return", "a\rb", `a\rb`),
		table.Entry("all four", "\\\"\n\r", `\\\"\n\r`),
	)
})

var _ = Describe("Conversion pipeline", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "stringsconv-suite-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	It("decodes a binary target, merges and replaces it atomically", func() {
		masterPath := filepath.Join(dir, "en.strings")
		Expect(os.WriteFile(masterPath, []byte(researchKitMaster), 0o600)).To(Succeed())

		data, err := plistsrc.Marshal(stringsconv.Table{
			"BUTTON_NEXT": "Siguiente",
			"BUTTON_SKIP": "Omitir\n\"esta\" pregunta",
			"ONLY_IN_ES":  "solo",
		}, plist.BinaryFormat)
		Expect(err).NotTo(HaveOccurred())
		targetPath := filepath.Join(dir, "es.strings")
		Expect(os.WriteFile(targetPath, data, 0o600)).To(Succeed())

		target, err := plistsrc.NewPlistDecoder().Decode(context.Background(), targetPath)
		Expect(err).NotTo(HaveOccurred())

		master, err := os.Open(masterPath)
		Expect(err).NotTo(HaveOccurred())
		defer master.Close()

		var report stringsconv.Report
		err = atomicfile.Write(targetPath, 0o600, func(w io.Writer) error {
			var mergeErr error
			report, mergeErr = stringsconv.NewMerger(stringsconv.Config{}).Merge(textenc.NewReader(master, textenc.Auto), target, w)
			return mergeErr
		})
		Expect(err).NotTo(HaveOccurred())

		converted, err := os.ReadFile(targetPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(converted)).To(Equal(`/* Consent */

/* Buttons */
"BUTTON_NEXT" = "Siguiente";
"BUTTON_SKIP" = "Omitir\n\"esta\" pregunta";


/* Unsorted */
"ONLY_IN_ES" = "solo";
`))
		Expect(report.MissingKeys).To(Equal([]string{"CONSENT_NAME_TITLE", "CONSENT_REVIEW_TITLE"}))

		entries, err := os.ReadDir(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(2))
	})
})
