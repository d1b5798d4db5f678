package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/davidriles/folio/internal/content"
	"golang.org/x/net/html"
)

// EPUBExtractor handles EPUB 2/3 containers. It resolves the OPF package
// through META-INF/container.xml and walks the spine in order, turning each
// XHTML content document into one chapter via the HTML block walk. DRM'd
// files are rejected.
type EPUBExtractor struct{}

type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Metadata struct {
		Title   string `xml:"title"`
		Creator string `xml:"creator"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID        string `xml:"id,attr"`
			Href      string `xml:"href,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

func (e *EPUBExtractor) Extract(r io.Reader, name string) ([]*content.Chapter, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read epub: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open epub container: %w", err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	if _, drm := files["META-INF/encryption.xml"]; drm {
		return nil, fmt.Errorf("epub %s is DRM protected", name)
	}

	opfPath, err := containerRootfile(files)
	if err != nil {
		return nil, err
	}

	var pkg epubPackage
	if err := readXML(files, opfPath, &pkg); err != nil {
		return nil, fmt.Errorf("read opf package: %w", err)
	}

	hrefByID := make(map[string]string, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		if strings.Contains(item.MediaType, "html") {
			hrefByID[item.ID] = item.Href
		}
	}

	opfDir := path.Dir(opfPath)
	var chapters []*content.Chapter
	for _, ref := range pkg.Spine.ItemRefs {
		href, ok := hrefByID[ref.IDRef]
		if !ok {
			continue // non-document spine entry
		}
		f, ok := files[resolveHref(opfDir, href)]
		if !ok {
			continue
		}
		ch, err := e.extractSpineDoc(f)
		if err != nil || ch == nil {
			continue
		}
		chapters = append(chapters, ch)
	}

	chapters = reindex(chapters)
	if len(chapters) == 0 {
		return nil, fmt.Errorf("no extractable content in %s", name)
	}
	if chapters[0].Title == "" {
		chapters[0].Title = firstNonEmpty(pkg.Metadata.Title, baseTitle(name))
	}
	return chapters, nil
}

// Metadata returns the package title and author without extracting content.
func (e *EPUBExtractor) Metadata(data []byte) (title, author string) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", ""
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	opfPath, err := containerRootfile(files)
	if err != nil {
		return "", ""
	}
	var pkg epubPackage
	if err := readXML(files, opfPath, &pkg); err != nil {
		return "", ""
	}
	return pkg.Metadata.Title, pkg.Metadata.Creator
}

func (e *EPUBExtractor) extractSpineDoc(f *zip.File) (*content.Chapter, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	doc, err := html.Parse(rc)
	if err != nil {
		return nil, err
	}

	body := findBody(doc)
	if body == nil {
		body = doc
	}

	// A spine document is one chapter; an inner heading names it rather than
	// splitting it.
	parts := walkBody(body, "")
	ch := &content.Chapter{Title: findTitle(doc)}
	for _, part := range parts {
		if ch.Title == "" && part.Title != "" {
			ch.Title = part.Title
		}
		ch.Elements = append(ch.Elements, part.Elements...)
	}
	if len(ch.Elements) == 0 {
		return nil, nil
	}
	return ch, nil
}

func containerRootfile(files map[string]*zip.File) (string, error) {
	var c epubContainer
	if err := readXML(files, "META-INF/container.xml", &c); err != nil {
		return "", fmt.Errorf("read container.xml: %w", err)
	}
	if len(c.Rootfiles) == 0 || c.Rootfiles[0].FullPath == "" {
		return "", fmt.Errorf("container.xml names no rootfile")
	}
	return c.Rootfiles[0].FullPath, nil
}

func readXML(files map[string]*zip.File, name string, v any) error {
	f, ok := files[name]
	if !ok {
		return fmt.Errorf("missing %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}

func resolveHref(opfDir, href string) string {
	if opfDir == "." || opfDir == "" {
		return href
	}
	return path.Join(opfDir, href)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
