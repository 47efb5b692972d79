package report

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

// Slide geometry in EMU (914400 per inch) for a 10x7.5in deck.
const (
	emuPerInch  = 914400
	slideWidth  = 10 * emuPerInch
	slideHeight = 15 * emuPerInch / 2
)

// Slide palette.
const (
	colorGood         = "4CAF50"
	colorFair         = "FFA726"
	colorPoor         = "EF5350"
	colorGray         = "757575"
	colorDarkGray     = "363636"
	colorText         = "424242"
	colorBlockerRed   = "D32F2F"
	colorSuccessGreen = "388E3C"
	colorBlue         = "2196F3"
)

// DeckTitle is the heading of the first slide.
const DeckTitle = "📊 Sprint Summary Report"

// Deck is the input to DeckRenderer. Slides[i] is the narrative for Summaries[i].
type Deck struct {
	Summaries   []models.Summary
	Slides      []models.SlideContent
	GeneratedAt time.Time
}

// DeckRenderer writes a presentation with a title slide and one 2x2 slide per summary.
type DeckRenderer struct{}

type textBox struct {
	ID      int
	Name    string
	X, Y    int64
	W, H    int64
	Anchor  string
	Paras   []para
	Wrapped bool
}

type para struct {
	Text  string
	Size  int // hundredths of a point
	Bold  bool
	Color string
	Align string
	After int // hundredths of a point
}

func (r *DeckRenderer) Render(d Deck, w io.Writer) error {
	if len(d.Slides) != len(d.Summaries) {
		return fmt.Errorf("deck has %d summaries but %d slide narratives", len(d.Summaries), len(d.Slides))
	}

	slides := make([][]textBox, 0, len(d.Summaries)+1)
	slides = append(slides, titleSlide(d))
	for i := range d.Summaries {
		slides = append(slides, teamSlide(&d.Summaries[i], d.Slides[i]))
	}

	zw := zip.NewWriter(w)
	files := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypes(len(slides))},
		{"_rels/.rels", rootRels},
		{"docProps/app.xml", appProps},
		{"docProps/core.xml", coreProps(d.GeneratedAt)},
		{"ppt/presentation.xml", presentation(len(slides))},
		{"ppt/_rels/presentation.xml.rels", presentationRels(len(slides))},
		{"ppt/slideMasters/slideMaster1.xml", slideMaster},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRels},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayout},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRels},
		{"ppt/theme/theme1.xml", theme},
	}
	for _, f := range files {
		if err := writeZipEntry(zw, f.name, f.body); err != nil {
			return err
		}
	}

	for i, boxes := range slides {
		var buf bytes.Buffer
		if err := slideTmpl.Execute(&buf, boxes); err != nil {
			return fmt.Errorf("failed to render slide %d: %w", i+1, err)
		}
		if err := writeZipEntry(zw, fmt.Sprintf("ppt/slides/slide%d.xml", i+1), buf.String()); err != nil {
			return err
		}
		if err := writeZipEntry(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), slideRels); err != nil {
			return err
		}
	}

	return zw.Close()
}

func writeZipEntry(zw *zip.Writer, name, body string) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	if _, err := io.WriteString(f, body); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func titleSlide(d Deck) []textBox {
	projects := make(map[string]bool)
	teams := make(map[string]bool)
	for _, s := range d.Summaries {
		projects[s.Project.Key] = true
		teams[s.Team.Label] = true
	}

	subtitle := []para{
		{Text: "📁 Projects: " + strings.Join(sortedKeys(projects), ", "), Size: 1800, Color: colorDarkGray, Align: "ctr"},
		{Text: "👥 Teams: " + strings.Join(sortedKeys(teams), ", "), Size: 1800, Color: colorDarkGray, Align: "ctr"},
		{Text: "", Size: 1800},
		{Text: "Generated: " + d.GeneratedAt.Format("2006-01-02 15:04"), Size: 1800, Color: colorDarkGray, Align: "ctr"},
	}

	return []textBox{
		{
			ID: 2, Name: "Title",
			X: emuPerInch / 2, Y: 2 * emuPerInch, W: 9 * emuPerInch, H: 3 * emuPerInch / 2,
			Anchor: "ctr",
			Paras:  []para{{Text: DeckTitle, Size: 4400, Bold: true, Color: colorBlue, Align: "ctr"}},
		},
		{
			ID: 3, Name: "Subtitle",
			X: emuPerInch, Y: 4 * emuPerInch, W: 8 * emuPerInch, H: 2 * emuPerInch,
			Anchor: "t", Wrapped: true,
			Paras: subtitle,
		},
	}
}

// SlideTitle is the heading of a team slide.
func SlideTitle(s *models.Summary) string {
	return fmt.Sprintf("Team: %s (%s) - Health: %s", s.Team.Label, s.Project.Key, s.Health.Overall)
}

func teamSlide(s *models.Summary, content models.SlideContent) []textBox {
	health := deckHealthColor(s.Health.Overall)
	blockers := colorSuccessGreen
	if len(s.Blockers) > 0 {
		blockers = colorBlockerRed
	}

	const (
		left   = emuPerInch / 2
		right  = 52 * emuPerInch / 10
		top    = 12 * emuPerInch / 10
		bottom = 42 * emuPerInch / 10
		boxW   = 43 * emuPerInch / 10
		boxH   = 28 * emuPerInch / 10
	)

	return []textBox{
		{
			ID: 2, Name: "Title",
			X: left, Y: emuPerInch / 5, W: 9 * emuPerInch, H: 6 * emuPerInch / 10,
			Anchor: "t",
			Paras:  []para{{Text: SlideTitle(s), Size: 2800, Bold: true, Color: health}},
		},
		sectionBox(3, "Health Summary", left, top, boxW, boxH, content.HealthSummary, health),
		sectionBox(4, "Accomplishments", right, top, boxW, boxH, content.Accomplishments, colorSuccessGreen),
		sectionBox(5, "Blockers", left, bottom, boxW, boxH, content.Blockers, blockers),
		sectionBox(6, "Recommendations", right, bottom, boxW, boxH, content.Recommendations, colorBlue),
	}
}

func sectionBox(id int, name string, x, y, w, h int64, sec models.SlideSection, titleColor string) textBox {
	paras := make([]para, 0, len(sec.Bullets)+1)
	paras = append(paras, para{Text: sec.Title, Size: 1600, Bold: true, Color: titleColor, After: 800})
	for _, b := range sec.Bullets {
		paras = append(paras, para{Text: "• " + b, Size: 1100, Color: colorText, After: 400})
	}
	return textBox{ID: id, Name: name, X: x, Y: y, W: w, H: h, Anchor: "t", Wrapped: true, Paras: paras}
}

func deckHealthColor(level models.HealthLevel) string {
	switch level {
	case models.HealthGood:
		return colorGood
	case models.HealthFair:
		return colorFair
	case models.HealthPoor:
		return colorPoor
	default:
		return colorGray
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

var slideTmpl = template.Must(template.New("slide").Funcs(template.FuncMap{"x": escapeXML}).Parse(
	`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
<p:cSld><p:spTree>
<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>
{{- range .}}
<p:sp>
<p:nvSpPr><p:cNvPr id="{{.ID}}" name="{{x .Name}}"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>
<p:spPr><a:xfrm><a:off x="{{.X}}" y="{{.Y}}"/><a:ext cx="{{.W}}" cy="{{.H}}"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>
<p:txBody><a:bodyPr wrap="{{if .Wrapped}}square{{else}}none{{end}}" lIns="127000" tIns="127000" rIns="127000" anchor="{{.Anchor}}"><a:normAutofit/></a:bodyPr><a:lstStyle/>
{{- range .Paras}}
<a:p><a:pPr{{if .Align}} algn="{{.Align}}"{{end}}>{{if .After}}<a:spcAft><a:spcPts val="{{.After}}"/></a:spcAft>{{end}}</a:pPr>{{if .Text}}<a:r><a:rPr lang="en-US" sz="{{.Size}}"{{if .Bold}} b="1"{{end}} dirty="0">{{if .Color}}<a:solidFill><a:srgbClr val="{{.Color}}"/></a:solidFill>{{end}}</a:rPr><a:t>{{x .Text}}</a:t></a:r>{{else}}<a:endParaRPr lang="en-US" sz="{{.Size}}" dirty="0"/>{{end}}</a:p>
{{- end}}
</p:txBody>
</p:sp>
{{- end}}
</p:spTree></p:cSld>
<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>
</p:sld>`))

func contentTypes(n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>
<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>
<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>
<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>
<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>
<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>
`)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`+"\n", i)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

func presentation(n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" saveSubsetFonts="1">
<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>
<p:sldIdLst>`)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 255+i, i+2)
	}
	fmt.Fprintf(&b, `</p:sldIdLst>
<p:sldSz cx="%d" cy="%d"/>
<p:notesSz cx="6858000" cy="9144000"/>
</p:presentation>`, slideWidth, slideHeight)
	return b.String()
}

func presentationRels(n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="theme/theme1.xml"/>
`)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`+"\n", i+2, i)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func coreProps(t time.Time) string {
	stamp := t.UTC().Format(time.RFC3339)
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
<dc:title>Sprint Summary Report</dc:title>
<dc:creator>sprint-inspect</dc:creator>
<dcterms:created xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:created>
<dcterms:modified xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:modified>
</cp:coreProperties>`
}

const rootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>
<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>
</Relationships>`

const appProps = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">
<Application>sprint-inspect</Application>
</Properties>`

const slideRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>
</Relationships>`

const slideLayoutRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="../slideMasters/slideMaster1.xml"/>
</Relationships>`

const slideMasterRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="../theme/theme1.xml"/>
</Relationships>`

const emptyTree = `<p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr></p:spTree></p:cSld>`

const slideMaster = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldMaster xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
` + emptyTree + `
<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>
<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>
</p:sldMaster>`

const slideLayout = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldLayout xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" type="blank" preserve="1">
` + emptyTree + `
<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>
</p:sldLayout>`

const theme = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Sprint">
<a:themeElements>
<a:clrScheme name="Sprint">
<a:dk1><a:srgbClr val="000000"/></a:dk1><a:lt1><a:srgbClr val="FFFFFF"/></a:lt1>
<a:dk2><a:srgbClr val="363636"/></a:dk2><a:lt2><a:srgbClr val="F5F5F5"/></a:lt2>
<a:accent1><a:srgbClr val="2196F3"/></a:accent1><a:accent2><a:srgbClr val="4CAF50"/></a:accent2>
<a:accent3><a:srgbClr val="FFA726"/></a:accent3><a:accent4><a:srgbClr val="EF5350"/></a:accent4>
<a:accent5><a:srgbClr val="757575"/></a:accent5><a:accent6><a:srgbClr val="388E3C"/></a:accent6>
<a:hlink><a:srgbClr val="2196F3"/></a:hlink><a:folHlink><a:srgbClr val="757575"/></a:folHlink>
</a:clrScheme>
<a:fontScheme name="Sprint">
<a:majorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>
<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>
</a:fontScheme>
<a:fmtScheme name="Sprint">
<a:fillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:fillStyleLst>
<a:lnStyleLst><a:ln w="9525"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="25400"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="38100"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln></a:lnStyleLst>
<a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst>
<a:bgFillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:bgFillStyleLst>
</a:fmtScheme>
</a:themeElements>
</a:theme>`
