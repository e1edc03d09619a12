package migrate

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"beg-migrate/internal/legacy"
)

var projectColumns = []string{
	"id", "projectNumber", "subProjectName", "name", "startDate",
	"locationId", "clientId", "engineerId", "companyId",
	"remark", "invoicingAddress", "status", "ended", "createdAt", "updatedAt",
}

var projectUserColumns = []string{"projectId", "userId", "role", "createdAt", "updatedAt"}
var projectTypeLinkColumns = []string{"projectId", "projectTypeId", "createdAt", "updatedAt"}

// nullableRef keeps a foreign key only when the target row exists; dangling
// legacy references are downgraded to NULL rather than failing the load.
func nullableRef(rec legacy.Record, field string, ids map[int64]struct{}) any {
	id, ok := rec.Int(field)
	if !ok {
		return nil
	}
	if _, exists := ids[id]; !exists {
		return nil
	}
	return id
}

// projectStatus distinguishes numbered (active) projects from drafts. A
// numeric zero or the literal "0" still counts as a project number.
func projectStatus(rec legacy.Record) string {
	v, ok := rec["Mandat"]
	if !ok || v == nil {
		return "draft"
	}
	if s, isStr := v.(string); isStr && s == "" {
		return "draft"
	}
	return "active"
}

func importProjects(ctx context.Context, run *Run) error {
	projectData := run.Snapshots.Read("Mandats")
	if len(projectData) == 0 {
		return nil
	}
	if run.Types == nil {
		return errors.New("project type mapping not loaded")
	}

	d := run.Store.Dialect
	now := time.Now().UTC()
	imported := 0

	type pendingLinks struct {
		projectID int64
		managerID int64
		typeIDs   []int64
	}

	process := func(chunk []legacy.Record) error {
		rows := make([][]any, 0, len(chunk))
		links := make([]pendingLinks, 0, len(chunk))

		for _, rec := range chunk {
			id, ok := rec.Int("IDmandat")
			if !ok {
				continue
			}

			startDate := now
			if rec.Has("Début") {
				startDate = legacy.ParseAccessDate(rec.Str("Début"))
			}

			var projectNumber any
			if rec.Has("Mandat") {
				projectNumber = rec.Str("Mandat")
			}
			var subProject any
			if s := rec.TrimStr("Sous-mandat"); s != "" {
				subProject = s
			}
			var remark any
			if rec.Has("Remarque") {
				remark = rec.Str("Remarque")
			}
			var invoicingAddress any
			if s := rec.Str("Facture"); s != "" {
				invoicingAddress = s
			}

			rows = append(rows, []any{
				id,
				projectNumber,
				subProject,
				rec.TrimStr("Désignation"),
				d.TimeParam(startDate),
				nullableRef(rec, "IDlocalité", run.LocationIDs),
				nullableRef(rec, "IDmandant", run.ClientIDs),
				nullableRef(rec, "IDingénieur", run.EngineerIDs),
				nullableRef(rec, "IDentreprise", run.CompanyIDs),
				remark,
				invoicingAddress,
				projectStatus(rec),
				d.BoolParam(rec.Str("Etat") == "Terminé"),
				d.TimeParam(startDate),
				d.TimeParam(now),
			})

			link := pendingLinks{projectID: id}
			if managerID, ok := run.UserByInitials[rec.Str("Responsable")]; ok {
				link.managerID = managerID
			}

			var labels []string
			if oldTypeID, ok := rec.Int("IDtype"); ok && oldTypeID != 0 {
				label := run.Types.LegacyIDToLabel[oldTypeID]
				labels = run.Types.Remap.Resolve(label)
			} else {
				labels = []string{legacy.UnclassifiedType}
			}
			for _, label := range labels {
				if typeID, ok := run.Types.NewLabelToID[label]; ok {
					link.typeIDs = append(link.typeIDs, typeID)
				}
			}

			links = append(links, link)
			run.ProjectIDs[id] = struct{}{}
			imported++
		}

		return run.Store.WithTx(ctx, func(tx *sql.Tx) error {
			if err := run.Store.BulkInsert(ctx, tx, "projects", projectColumns, rows); err != nil {
				return err
			}

			var managerRows [][]any
			var typeRows [][]any
			for _, link := range links {
				if link.managerID != 0 {
					managerRows = append(managerRows, []any{
						link.projectID, link.managerID, "manager", d.TimeParam(now), d.TimeParam(now),
					})
				}
				for _, typeID := range link.typeIDs {
					typeRows = append(typeRows, []any{
						link.projectID, typeID, d.TimeParam(now), d.TimeParam(now),
					})
				}
			}
			if err := run.Store.BulkInsert(ctx, tx, "project_users", projectUserColumns, managerRows); err != nil {
				return err
			}
			return run.Store.BulkInsert(ctx, tx, "project_project_types", projectTypeLinkColumns, typeRows)
		})
	}

	for start := 0; start < len(projectData); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(projectData) {
			end = len(projectData)
		}
		if err := process(projectData[start:end]); err != nil {
			return err
		}
		run.Log.Infof("imported %d / %d projects", imported, len(projectData))
	}

	return nil
}
