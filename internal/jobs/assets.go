package jobs

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// equip types whose model metadata lives under meta/item rather than meta/armor
var itemMetaTypes = map[int]bool{13: true, 14: true, 17: true, 21: true, 22: true, 23: true, 26: true}

var assetColumns = []string{"DISP_ID", "EQ_TYPE", "Missing", "FileDataId", "URL"}

// Assets checks a model viewer for the metadata, textures and models each
// display id needs and reports what's missing.
type Assets struct {
	fetch Fetcher
	Base  string
}

func NewAssets(f Fetcher, base string) *Assets {
	return &Assets{fetch: f, Base: strings.TrimSuffix(base, "/")}
}

func (j *Assets) Name() string { return "missing_assets" }

func (j *Assets) Columns([]string) []string { return assetColumns }

// MetaURL is the metadata document for a display id.
func (j *Assets) MetaURL(dispID, eqType int) string {
	if itemMetaTypes[eqType] {
		return fmt.Sprintf("%s/meta/item/%d.json", j.Base, dispID)
	}
	return fmt.Sprintf("%s/meta/armor/%d/%d.json", j.Base, eqType, dispID)
}

type fileRef struct {
	kind string // "texture" or "model"
	id   int64
}

// fileRefs lists the file data ids a metadata document points at.
func fileRefs(meta []byte) []fileRef {
	var refs []fileRef
	direct := func(path, kind string) {
		gjson.GetBytes(meta, path).ForEach(func(_, v gjson.Result) bool {
			if v.Type == gjson.Number {
				refs = append(refs, fileRef{kind, v.Int()})
			}
			return true
		})
	}
	listed := func(path, kind string) {
		gjson.GetBytes(meta, path).ForEach(func(_, entries gjson.Result) bool {
			entries.ForEach(func(_, e gjson.Result) bool {
				if id := e.Get("FileDataId"); id.Exists() {
					refs = append(refs, fileRef{kind, id.Int()})
				}
				return true
			})
			return true
		})
	}
	direct("Model", "model")
	direct("Textures", "texture")
	listed("TextureFiles", "texture")
	listed("ModelFiles", "model")
	return refs
}

func (j *Assets) Process(ctx context.Context, row map[string]string) ([]map[string]string, error) {
	dispID, err := strconv.Atoi(field(row, "DISP_ID"))
	if err != nil || dispID <= 0 {
		return nil, nil
	}
	eqType, err := strconv.Atoi(field(row, "EQ_TYPE"))
	if err != nil {
		return nil, fmt.Errorf("EQ_TYPE %q: %w", row["EQ_TYPE"], err)
	}

	missing := func(what string, fileID int64, url string) map[string]string {
		m := map[string]string{
			"DISP_ID": strconv.Itoa(dispID),
			"EQ_TYPE": strconv.Itoa(eqType),
			"Missing": what,
			"URL":     url,
		}
		if fileID > 0 {
			m["FileDataId"] = strconv.FormatInt(fileID, 10)
		}
		return m
	}

	metaURL := j.MetaURL(dispID, eqType)
	meta, err := j.fetch.Get(ctx, metaURL)
	if err != nil || !gjson.ValidBytes(meta) {
		return []map[string]string{missing("json", 0, metaURL)}, nil
	}

	var out []map[string]string
	for _, ref := range fileRefs(meta) {
		url := fmt.Sprintf("%s/textures/%d.webp", j.Base, ref.id)
		if ref.kind == "model" {
			url = fmt.Sprintf("%s/mo3/%d.mo3", j.Base, ref.id)
		}
		if !j.fetch.Exists(ctx, url) {
			out = append(out, missing(ref.kind, ref.id, url))
		}
	}
	return out, nil
}
