// Package mastersvc implements the master-data service: reference data
// (geography, sites, equipment, suppliers) shared by the rest of the ERP.
//
// Every master table follows the same conventions: a server-generated
// unique_id, an is_active flag, soft deletion via is_deleted, and
// created/updated timestamps with the acting username. Names are unique
// within their parent scope (a state name is unique per country) which the
// database enforces with partial unique indexes over non-deleted rows.
package mastersvc

import (
	"time"

	"github.com/google/uuid"
)

// Resource describes one master-data table. All resources share the
// BaseMaster column set; they differ only in table name and the optional
// parent foreign key that scopes name uniqueness.
type Resource struct {
	// Name is the URL path segment, e.g. "countries".
	Name string

	// Singular is used in error messages and log lines.
	Singular string

	// Table is the SQL table name.
	Table string

	// ParentCol names the foreign key column scoping uniqueness, empty for
	// top-level resources.
	ParentCol string
}

// HasParent reports whether the resource is scoped under a parent resource.
func (r Resource) HasParent() bool { return r.ParentCol != "" }

// Resources is the master-data catalog in registration order. Table and
// column names here are trusted compile-time constants; they are the only
// identifiers ever interpolated into SQL.
var Resources = []Resource{
	{Name: "continents", Singular: "continent", Table: "master_continent"},
	{Name: "countries", Singular: "country", Table: "master_country", ParentCol: "continent_id"},
	{Name: "states", Singular: "state", Table: "master_state", ParentCol: "country_id"},
	{Name: "cities", Singular: "city", Table: "master_city", ParentCol: "state_id"},
	{Name: "districts", Singular: "district", Table: "master_district", ParentCol: "state_id"},
	{Name: "sites", Singular: "site", Table: "master_site", ParentCol: "city_id"},
	{Name: "plants", Singular: "plant", Table: "master_plant", ParentCol: "site_id"},
	{Name: "equipment-types", Singular: "equipment type", Table: "master_equipment_type"},
	{Name: "equipment-models", Singular: "equipment model", Table: "master_equipment_model", ParentCol: "equipment_type_id"},
	{Name: "contractors", Singular: "contractor", Table: "master_contractor"},
	{Name: "vehicle-suppliers", Singular: "vehicle supplier", Table: "master_vehicle_supplier"},
}

// Record is one row of a master table.
type Record struct {
	ID       int64
	UniqueID uuid.UUID
	Name     string
	Code     string
	// ParentID is nil for top-level resources.
	ParentID  *int64
	IsActive  bool
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

// Input carries the client-settable fields of a record.
type Input struct {
	Name     string
	Code     string
	ParentID *int64
	IsActive bool
}
