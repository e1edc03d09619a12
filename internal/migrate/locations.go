package migrate

import (
	"context"
	"strings"
	"time"
)

// cantonByName maps the French canton names used in the legacy region tree
// to two-letter canton codes.
var cantonByName = map[string]string{
	"Valais":                       "VS",
	"Vaud":                         "VD",
	"Genève":                       "GE",
	"Neuchâtel":                    "NE",
	"Fribourg":                     "FR",
	"Jura":                         "JU",
	"Berne":                        "BE",
	"Zürich":                       "ZH",
	"Lucerne":                      "LU",
	"Uri":                          "UR",
	"Schwyz":                       "SZ",
	"Obwald":                       "OW",
	"Nidwald":                      "NW",
	"Glarus":                       "GL",
	"Zug":                          "ZG",
	"Soleure":                      "SO",
	"Bâle-Ville":                   "BS",
	"Bâle-Campagne":                "BL",
	"Schaffhouse":                  "SH",
	"Appenzell Rhodes-Extérieures": "AR",
	"Appenzell Rhodes-Intérieures": "AI",
	"Saint-Gall":                   "SG",
	"Grisons":                      "GR",
	"Argovie":                      "AG",
	"Thurgovie":                    "TG",
	"Tessin":                       "TI",
}

var countryByName = map[string]string{
	"Suisse": "CH",
	"France": "FR",
	"Italie": "IT",
}

// treeNode is one row of the legacy region tree: country, region, then two
// optional locality levels.
type treeNode struct {
	l0, l1, l2, l3 string
}

var locationColumns = []string{
	"id", "name", "country", "canton", "region", "address", "createdAt", "updatedAt",
}

// importLocations joins the flat locality list against the region tree.
// A locality whose region id is missing from the tree still gets a row with
// just its name and the default country.
func importLocations(ctx context.Context, run *Run) error {
	treeData := run.Snapshots.Read("TreeTable")
	locationData := run.Snapshots.Read("Localités")
	if len(locationData) == 0 {
		return nil
	}

	tree := make(map[int64]treeNode, len(treeData))
	for _, rec := range treeData {
		id, ok := rec.Int("ID")
		if !ok {
			continue
		}
		tree[id] = treeNode{
			l0: rec.Str("L0"),
			l1: rec.Str("L1"),
			l2: rec.Str("L2"),
			l3: rec.Str("L3"),
		}
	}

	d := run.Store.Dialect
	now := time.Now().UTC()
	rows := make([][]any, 0, len(locationData))

	for _, rec := range locationData {
		id, ok := rec.Int("IDlocalité")
		if !ok {
			continue
		}

		country := "CH"
		var canton, region, address any

		regionID, hasRegion := rec.Int("IDrégion")
		node, found := tree[regionID]
		if hasRegion && found {
			if c, ok := countryByName[node.l0]; ok {
				country = c
			}
			if node.l1 != "" {
				if code, ok := cantonByName[node.l1]; ok {
					canton = code
				} else {
					region = node.l1
				}
			}
			var parts []string
			if node.l2 != "" {
				parts = append(parts, node.l2)
			}
			if node.l3 != "" {
				parts = append(parts, node.l3)
			}
			if len(parts) > 0 {
				address = strings.Join(parts, "\n")
			}
		} else {
			run.Log.Warnf("no region tree entry for locality %q (region id %d)", rec.TrimStr("Localité"), regionID)
		}

		rows = append(rows, []any{
			id, rec.TrimStr("Localité"), country, canton, region, address,
			d.TimeParam(now), d.TimeParam(now),
		})
		run.LocationIDs[id] = struct{}{}
	}

	if err := bulkInsertChunked(ctx, run, "locations", locationColumns, rows, insertChunkSize); err != nil {
		return err
	}
	run.Log.Infof("imported %d locations", len(rows))
	return nil
}
