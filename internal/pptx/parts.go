package pptx

import (
	"bytes"
	"encoding/xml"
	"text/template"
)

const (
	nsA = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"`
	nsR = `xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
	nsP = `xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

	relBase = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
	ctBase  = "application/vnd.openxmlformats-officedocument.presentationml."
)

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

var funcs = template.FuncMap{
	"xml": escapeXML,
	"add": func(a, b int) int { return a + b },
}

var parts = template.Must(template.New("parts").Funcs(funcs).Parse(`
{{define "header"}}<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
{{end}}

{{define "xfrm"}}<a:xfrm><a:off x="{{.X}}" y="{{.Y}}"/><a:ext cx="{{.W}}" cy="{{.H}}"/></a:xfrm>{{end}}

{{define "groupProps"}}<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>{{end}}

{{define "clrMap"}}<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>{{end}}

{{define "contentTypes"}}{{template "header"}}<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Default Extension="jpeg" ContentType="image/jpeg"/>
<Default Extension="png" ContentType="image/png"/>
<Default Extension="gif" ContentType="image/gif"/>
<Override PartName="/ppt/presentation.xml" ContentType="` + ctBase + `presentation.main+xml"/>
<Override PartName="/ppt/presProps.xml" ContentType="` + ctBase + `presProps+xml"/>
<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="` + ctBase + `slideMaster+xml"/>
<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="` + ctBase + `slideLayout+xml"/>
<Override PartName="/ppt/notesMasters/notesMaster1.xml" ContentType="` + ctBase + `notesMaster+xml"/>
<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>
<Override PartName="/ppt/theme/theme2.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>
{{range .Slides}}<Override PartName="/ppt/slides/slide{{.Number}}.xml" ContentType="` + ctBase + `slide+xml"/>
<Override PartName="/ppt/notesSlides/notesSlide{{.Number}}.xml" ContentType="` + ctBase + `notesSlide+xml"/>
{{end}}<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>
<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>
</Types>{{end}}

{{define "rootRels"}}{{template "header"}}<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="` + relBase + `officeDocument" Target="ppt/presentation.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>
<Relationship Id="rId3" Type="` + relBase + `extended-properties" Target="docProps/app.xml"/>
</Relationships>{{end}}

{{define "core"}}{{template "header"}}<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
<dc:title>{{xml .Title}}</dc:title>
<dc:subject>{{xml .Subject}}</dc:subject>
<dc:creator>SlideSmith</dc:creator>
<cp:lastModifiedBy>SlideSmith</cp:lastModifiedBy>
<cp:revision>1</cp:revision>
<dcterms:created xsi:type="dcterms:W3CDTF">{{.Created}}</dcterms:created>
<dcterms:modified xsi:type="dcterms:W3CDTF">{{.Created}}</dcterms:modified>
</cp:coreProperties>{{end}}

{{define "app"}}{{template "header"}}<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">
<Application>SlideSmith</Application>
<PresentationFormat>On-screen Show (16:9)</PresentationFormat>
<Slides>{{len .Slides}}</Slides>
<Notes>{{len .Slides}}</Notes>
</Properties>{{end}}

{{define "presentation"}}{{template "header"}}<p:presentation ` + nsA + ` ` + nsR + ` ` + nsP + ` saveSubsetFonts="1">
<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>
<p:notesMasterIdLst><p:notesMasterId r:id="{{.NotesMasterRel}}"/></p:notesMasterIdLst>
<p:sldIdLst>{{range .Slides}}<p:sldId id="{{add 255 .Number}}" r:id="rId{{add 1 .Number}}"/>{{end}}</p:sldIdLst>
<p:sldSz cx="{{.Width}}" cy="{{.Height}}"/>
<p:notesSz cx="6858000" cy="9144000"/>
</p:presentation>{{end}}

{{define "presentationRels"}}{{template "header"}}<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="` + relBase + `slideMaster" Target="slideMasters/slideMaster1.xml"/>
{{range .Slides}}<Relationship Id="rId{{add 1 .Number}}" Type="` + relBase + `slide" Target="slides/slide{{.Number}}.xml"/>
{{end}}<Relationship Id="{{.NotesMasterRel}}" Type="` + relBase + `notesMaster" Target="notesMasters/notesMaster1.xml"/>
<Relationship Id="{{.ThemeRel}}" Type="` + relBase + `theme" Target="theme/theme1.xml"/>
<Relationship Id="{{.PresPropsRel}}" Type="` + relBase + `presProps" Target="presProps.xml"/>
</Relationships>{{end}}

{{define "presProps"}}{{template "header"}}<p:presentationPr ` + nsA + ` ` + nsR + ` ` + nsP + `/>{{end}}

{{define "master"}}{{template "header"}}<p:sldMaster ` + nsA + ` ` + nsR + ` ` + nsP + `>
<p:cSld><p:bg><p:bgPr><a:solidFill><a:srgbClr val="{{.Background}}"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>
<p:spTree>{{template "groupProps"}}
<p:sp><p:nvSpPr><p:cNvPr id="2" name="Accent Bar"/><p:cNvSpPr/><p:nvPr userDrawn="1"/></p:nvSpPr><p:spPr>{{template "xfrm" .AccentBar}}<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:solidFill><a:srgbClr val="{{.Accent}}"/></a:solidFill><a:ln><a:noFill/></a:ln></p:spPr></p:sp>
</p:spTree></p:cSld>
{{template "clrMap"}}
<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>
<p:txStyles><p:titleStyle/><p:bodyStyle/><p:otherStyle/></p:txStyles>
</p:sldMaster>{{end}}

{{define "masterRels"}}{{template "header"}}<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="` + relBase + `slideLayout" Target="../slideLayouts/slideLayout1.xml"/>
<Relationship Id="rId2" Type="` + relBase + `theme" Target="../theme/theme1.xml"/>
</Relationships>{{end}}

{{define "layout"}}{{template "header"}}<p:sldLayout ` + nsA + ` ` + nsR + ` ` + nsP + ` type="blank" preserve="1">
<p:cSld name="Blank"><p:spTree>{{template "groupProps"}}</p:spTree></p:cSld>
<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>
</p:sldLayout>{{end}}

{{define "layoutRels"}}{{template "header"}}<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="` + relBase + `slideMaster" Target="../slideMasters/slideMaster1.xml"/>
</Relationships>{{end}}

{{define "notesMaster"}}{{template "header"}}<p:notesMaster ` + nsA + ` ` + nsR + ` ` + nsP + `>
<p:cSld><p:spTree>{{template "groupProps"}}</p:spTree></p:cSld>
{{template "clrMap"}}
</p:notesMaster>{{end}}

{{define "notesMasterRels"}}{{template "header"}}<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="` + relBase + `theme" Target="../theme/theme2.xml"/>
</Relationships>{{end}}

{{define "theme"}}{{template "header"}}<a:theme ` + nsA + ` name="SlideSmith Dark">
<a:themeElements>
<a:clrScheme name="SlideSmith">
<a:dk1><a:srgbClr val="000000"/></a:dk1><a:lt1><a:srgbClr val="FFFFFF"/></a:lt1>
<a:dk2><a:srgbClr val="0F111A"/></a:dk2><a:lt2><a:srgbClr val="E2E8F0"/></a:lt2>
<a:accent1><a:srgbClr val="38BDF8"/></a:accent1><a:accent2><a:srgbClr val="818CF8"/></a:accent2>
<a:accent3><a:srgbClr val="34D399"/></a:accent3><a:accent4><a:srgbClr val="FBBF24"/></a:accent4>
<a:accent5><a:srgbClr val="F87171"/></a:accent5><a:accent6><a:srgbClr val="94A3B8"/></a:accent6>
<a:hlink><a:srgbClr val="38BDF8"/></a:hlink><a:folHlink><a:srgbClr val="818CF8"/></a:folHlink>
</a:clrScheme>
<a:fontScheme name="SlideSmith">
<a:majorFont><a:latin typeface="Arial"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>
<a:minorFont><a:latin typeface="Arial"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>
</a:fontScheme>
<a:fmtScheme name="SlideSmith">
<a:fillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:fillStyleLst>
<a:lnStyleLst><a:ln w="6350"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="12700"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="19050"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln></a:lnStyleLst>
<a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst>
<a:bgFillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:bgFillStyleLst>
</a:fmtScheme>
</a:themeElements>
</a:theme>{{end}}

{{define "run"}}<a:r><a:rPr lang="en-US" sz="{{.Size}}"{{if .Bold}} b="1"{{end}}{{if .Italic}} i="1"{{end}} dirty="0"><a:solidFill><a:srgbClr val="{{.Color}}"/></a:solidFill><a:latin typeface="{{.Font}}"/><a:cs typeface="{{.Font}}"/></a:rPr><a:t>{{xml .Text}}</a:t></a:r>{{end}}

{{define "slide"}}{{template "header"}}<p:sld ` + nsA + ` ` + nsR + ` ` + nsP + `>
<p:cSld><p:spTree>{{template "groupProps"}}
<p:sp><p:nvSpPr><p:cNvPr id="2" name="Title"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr><p:spPr>{{template "xfrm" .Layout.Title}}<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr><p:txBody><a:bodyPr wrap="square" rtlCol="0" anchor="ctr"><a:normAutofit/></a:bodyPr><a:lstStyle/><a:p><a:pPr algn="l"/>{{template "run" .TitleRun}}</a:p></p:txBody></p:sp>
<p:sp><p:nvSpPr><p:cNvPr id="3" name="Bullets"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr><p:spPr>{{template "xfrm" .Layout.Bullets}}<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr><p:txBody><a:bodyPr wrap="square" rtlCol="0" anchor="t"><a:normAutofit/></a:bodyPr><a:lstStyle/>{{range .BulletRuns}}<a:p><a:pPr marL="285750" indent="-285750" algn="l"><a:lnSpc><a:spcPct val="{{$.LineSpacing}}"/></a:lnSpc><a:spcBef><a:spcPts val="0"/></a:spcBef><a:spcAft><a:spcPts val="{{$.SpaceAfter}}"/></a:spcAft><a:buFont typeface="Arial"/><a:buChar char="&#8226;"/></a:pPr>{{template "run" .}}</a:p>{{else}}<a:p><a:endParaRPr lang="en-US" dirty="0"/></a:p>{{end}}</p:txBody></p:sp>
{{with .Image}}<p:pic><p:nvPicPr><p:cNvPr id="4" name="Picture"/><p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr><p:blipFill><a:blip r:embed="{{.RelID}}"/><a:srcRect l="{{.Crop.L}}" t="{{.Crop.T}}" r="{{.Crop.R}}" b="{{.Crop.B}}"/><a:stretch><a:fillRect/></a:stretch></p:blipFill><p:spPr>{{template "xfrm" $.Layout.Image}}<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>
{{end}}{{with .CaptionRun}}<p:sp><p:nvSpPr><p:cNvPr id="5" name="Attribution"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr><p:spPr>{{template "xfrm" $.Layout.Caption}}<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr><p:txBody><a:bodyPr wrap="square" lIns="0" tIns="0" rIns="0" bIns="0" rtlCol="0"/><a:lstStyle/><a:p><a:pPr algn="r"/>{{template "run" .}}</a:p></p:txBody></p:sp>
{{end}}</p:spTree></p:cSld>
<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>
</p:sld>{{end}}

{{define "slideRels"}}{{template "header"}}<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="` + relBase + `slideLayout" Target="../slideLayouts/slideLayout1.xml"/>
<Relationship Id="rId2" Type="` + relBase + `notesSlide" Target="../notesSlides/notesSlide{{.Number}}.xml"/>
{{with .Image}}<Relationship Id="{{.RelID}}" Type="` + relBase + `image" Target="../media/{{.Name}}"/>
{{end}}</Relationships>{{end}}

{{define "notes"}}{{template "header"}}<p:notes ` + nsA + ` ` + nsR + ` ` + nsP + `>
<p:cSld><p:spTree>{{template "groupProps"}}
<p:sp><p:nvSpPr><p:cNvPr id="2" name="Slide Image Placeholder 1"/><p:cNvSpPr><a:spLocks noGrp="1" noRot="1" noChangeAspect="1"/></p:cNvSpPr><p:nvPr><p:ph type="sldImg"/></p:nvPr></p:nvSpPr><p:spPr/></p:sp>
<p:sp><p:nvSpPr><p:cNvPr id="3" name="Notes Placeholder 2"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/>{{range .Notes}}<a:p><a:r><a:rPr lang="en-US" dirty="0"/><a:t>{{xml .}}</a:t></a:r></a:p>{{else}}<a:p><a:endParaRPr lang="en-US" dirty="0"/></a:p>{{end}}</p:txBody></p:sp>
</p:spTree></p:cSld>
<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>
</p:notes>{{end}}

{{define "notesRels"}}{{template "header"}}<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="` + relBase + `notesMaster" Target="../notesMasters/notesMaster1.xml"/>
<Relationship Id="rId2" Type="` + relBase + `slide" Target="../slides/slide{{.Number}}.xml"/>
</Relationships>{{end}}
`))

func render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := parts.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
