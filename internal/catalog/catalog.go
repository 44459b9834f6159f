package catalog

import (
	"time"

	catalogDatamodel "github.com/frahmantamala/stock-management/internal/core/datamodel/catalog"
)

type Area struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Branch belongs to exactly one Area. AreaName is filled on listings.
type Branch struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	AreaID    int64     `json:"area_id"`
	AreaName  string    `json:"area_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func AreaFromDataModel(a *catalogDatamodel.Area) *Area {
	return &Area{ID: a.ID, Name: a.Name, CreatedAt: a.CreatedAt}
}

func BranchFromDataModel(b *catalogDatamodel.Branch) *Branch {
	return &Branch{ID: b.ID, Name: b.Name, AreaID: b.AreaID, CreatedAt: b.CreatedAt}
}

func ItemFromDataModel(i *catalogDatamodel.Item) *Item {
	return &Item{ID: i.ID, Name: i.Name, CreatedAt: i.CreatedAt}
}
