package migrate

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"beg-migrate/internal/auth"
)

var superAdminInitials = []string{"fp", "mo", "md"}
var adminInitials = []string{"gg", "sc"}

const defaultPassword = "password123"
const emailDomain = "beg-geol.ch"

func roleForInitials(initials string) string {
	for _, s := range superAdminInitials {
		if initials == s {
			return "super_admin"
		}
	}
	for _, a := range adminInitials {
		if initials == a {
			return "admin"
		}
	}
	return "user"
}

var userColumns = []string{
	"email", "lastName", "firstName", "initials", "archived",
	"password", "role", "activityRates", "createdAt", "updatedAt",
}

// importUsers loads the staff table. Legacy ids are preserved when present
// so activities and workloads can keep referencing them; per-activity rate
// classes come from the LinkACC join table and are stored as JSON on the
// user row.
func importUsers(ctx context.Context, run *Run) error {
	userData := run.Snapshots.Read("Collaborateurs")
	rateData := run.Snapshots.Read("LinkACC")
	if len(userData) == 0 {
		return nil
	}

	// LinkACC rows per legacy user id.
	ratesByUser := make(map[int64][]ActivityRate)
	for _, rec := range rateData {
		userID, ok := rec.Int("IDcollaborateur")
		if !ok {
			continue
		}
		activityID, ok := rec.Int("IDactivité")
		if !ok {
			continue
		}
		ratesByUser[userID] = append(ratesByUser[userID], ActivityRate{
			ActivityID: activityID,
			Class:      rec.TrimStr("Classe"),
		})
	}

	d := run.Store.Dialect
	now := time.Now().UTC()

	err := run.Store.WithTx(ctx, func(tx *sql.Tx) error {
		for _, rec := range userData {
			initials := rec.Str("Initiales")
			password := rec.Str("Mot de passe")
			if password == "" {
				password = defaultPassword
			}
			if !auth.IsHashed(password) {
				hashed, err := auth.HashPassword(password)
				if err != nil {
					return fmt.Errorf("hash password for %s: %w", initials, err)
				}
				password = hashed
			}

			legacyID, hasID := rec.Int("IDcollaborateur")

			var rates []ActivityRate
			if hasID {
				rates = ratesByUser[legacyID]
			}
			if rates == nil {
				rates = []ActivityRate{}
			}
			ratesJSON, err := json.Marshal(rates)
			if err != nil {
				return fmt.Errorf("encode activity rates for %s: %w", initials, err)
			}

			columns := userColumns
			row := []any{
				strings.ToLower(initials) + "@" + emailDomain,
				rec.Str("Nom"),
				rec.Str("Prénom"),
				initials,
				d.BoolParam(false),
				password,
				roleForInitials(initials),
				string(ratesJSON),
				d.TimeParam(now),
				d.TimeParam(now),
			}
			if hasID {
				columns = append([]string{"id"}, columns...)
				row = append([]any{legacyID}, row...)
			}

			id, err := run.Store.InsertReturningID(ctx, tx, "users", columns, row)
			if err != nil {
				return fmt.Errorf("user %s: %w", initials, err)
			}

			run.UserIDs[id] = struct{}{}
			run.UserByInitials[initials] = id
			run.UserRates[id] = rates
		}
		return nil
	})
	if err != nil {
		return err
	}

	run.Log.Infof("imported %d users", len(run.UserIDs))
	return nil
}
