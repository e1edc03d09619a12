package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// The legacy activity catalog predates the current code scheme; both codes
// and names are rewritten on the way in.
var activityCodeOverrides = map[string]string{
	"Ex": "Ex",
	"Ec": "Ec",
	"Eo": "Eo",
	"Er": "Er",
	"Es": "Es",
	"Et": "Et",
	"Ma": "Ee",
	"Ed": "Ed",
	"Ef": "Ef",
	"Gm": "Em",
	"NF": "Nf",
	"Ga": "Ga",
	"Gd": "x",
}

var activityNameOverrides = map[string]string{
	"Ex": "Etude: expertise, gestion projet",
	"Ec": "Etude: coordination, mail, courrier",
	"Eo": "Etude: offre, facturation",
	"Er": "Etude: analyse, rapport",
	"Es": "Etude: séance, PV",
	"Et": "Etude: terrain spécialiste",
	"Ma": "Etude: essai, terrain opérateur",
	"Ed": "Etude: SIG, dessin spécialiste",
	"Ef": "Etude: terrain aide, dessin/tâche faciles",
	"Gm": "Etude: entretien matériel, manutention",
	"NF": "Hors mandat: non facturable",
	"Ga": "Gestion: administration",
	"Gd": "Gestion: dactylographie (archivée)",
}

// Management activities that never bill to a client.
var nonBillableCodes = map[string]struct{}{"Gc": {}, "Gr": {}, "Ga": {}}

// additionalActivityTypes are management categories that never existed in
// the legacy catalog.
var additionalActivityTypes = []struct {
	name string
	code string
}{
	{"Gestion: comptabilité", "Gc"},
	{"Gestion: RH", "Gr"},
	{"Gestion: archivage", "Ga"},
}

var activityTypeColumns = []string{"id", "name", "code", "billable", "createdAt", "updatedAt"}

func importActivityTypes(ctx context.Context, run *Run) error {
	data := run.Snapshots.Read("Activités")
	if len(data) == 0 {
		return nil
	}

	d := run.Store.Dialect
	now := time.Now().UTC()
	rows := make([][]any, 0, len(data))
	existingNames := make(map[string]struct{})

	for _, rec := range data {
		id, ok := rec.Int("IDactivité")
		if !ok {
			continue
		}

		legacyName := rec.Str("Activité")
		mappedCode := rec.TrimStr("Code")
		if mappedCode == "" && legacyName != "" {
			r := []rune(legacyName)
			if len(r) > 3 {
				r = r[:3]
			}
			mappedCode = strings.ToUpper(string(r))
		}
		if mappedCode == "" {
			continue
		}

		code := mappedCode
		if override, ok := activityCodeOverrides[mappedCode]; ok {
			code = override
		}
		name := legacyName
		if override, ok := activityNameOverrides[mappedCode]; ok {
			name = override
		}

		billable := true
		if legacyName == "Non facturable" {
			billable = false
		} else if _, ok := nonBillableCodes[code]; ok {
			billable = false
		}

		rows = append(rows, []any{id, name, code, d.BoolParam(billable), d.TimeParam(now), d.TimeParam(now)})
		existingNames[name] = struct{}{}
		run.ActivityTypeIDs[id] = struct{}{}
	}

	err := run.Store.WithTx(ctx, func(tx *sql.Tx) error {
		if err := run.Store.BulkInsert(ctx, tx, "activity_types", activityTypeColumns, rows); err != nil {
			return err
		}
		for _, extra := range additionalActivityTypes {
			if _, ok := existingNames[extra.name]; ok {
				continue
			}
			_, err := run.Store.InsertReturningID(ctx, tx, "activity_types",
				[]string{"name", "code", "billable", "createdAt", "updatedAt"},
				[]any{extra.name, extra.code, d.BoolParam(false), d.TimeParam(now), d.TimeParam(now)})
			if err != nil {
				return fmt.Errorf("activity type %q: %w", extra.name, err)
			}
			existingNames[extra.name] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return err
	}

	run.Log.Infof("imported %d activity types", len(existingNames))
	return nil
}
