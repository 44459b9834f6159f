package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/stock-management/internal/catalog"
	catalogDatamodel "github.com/frahmantamala/stock-management/internal/core/datamodel/catalog"
	ledgerDatamodel "github.com/frahmantamala/stock-management/internal/core/datamodel/ledger"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) catalog.RepositoryAPI {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListAreas(ctx context.Context) ([]*catalogDatamodel.Area, error) {
	var areas []*catalogDatamodel.Area
	err := r.db.WithContext(ctx).Order("name ASC").Find(&areas).Error
	return areas, err
}

func (r *CatalogRepository) GetArea(ctx context.Context, id int64) (*catalogDatamodel.Area, error) {
	var area catalogDatamodel.Area
	if err := first(r.db.WithContext(ctx), &area, id); err != nil || area.ID == 0 {
		return nil, err
	}
	return &area, nil
}

func (r *CatalogRepository) CreateArea(ctx context.Context, area *catalogDatamodel.Area) error {
	return r.db.WithContext(ctx).Create(area).Error
}

func (r *CatalogRepository) UpdateArea(ctx context.Context, area *catalogDatamodel.Area) error {
	return r.db.WithContext(ctx).Model(area).Update("name", area.Name).Error
}

// DeleteArea removes transactions, stock and branches under the area before
// the area itself, all in one transaction.
func (r *CatalogRepository) DeleteArea(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		branchIDs := func() *gorm.DB {
			return tx.Model(&catalogDatamodel.Branch{}).Select("id").Where("area_id = ?", id)
		}

		if err := tx.Where("branch_id IN (?)", branchIDs()).Delete(&ledgerDatamodel.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("branch_id IN (?)", branchIDs()).Delete(&ledgerDatamodel.Stock{}).Error; err != nil {
			return err
		}
		if err := tx.Where("area_id = ?", id).Delete(&catalogDatamodel.Branch{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&catalogDatamodel.Area{}, id)
		found = res.RowsAffected > 0
		return res.Error
	})
	return found, err
}

func (r *CatalogRepository) ListBranches(ctx context.Context, areaID *int64) ([]*catalog.Branch, error) {
	query := r.db.WithContext(ctx).
		Table("branches AS b").
		Select("b.id, b.name, b.area_id, b.created_at, a.name AS area_name").
		Joins("JOIN areas AS a ON a.id = b.area_id")
	if areaID != nil {
		query = query.Where("b.area_id = ?", *areaID)
	}

	var branches []*catalog.Branch
	err := query.Order("a.name ASC, b.name ASC").Scan(&branches).Error
	return branches, err
}

func (r *CatalogRepository) GetBranch(ctx context.Context, id int64) (*catalogDatamodel.Branch, error) {
	var branch catalogDatamodel.Branch
	if err := first(r.db.WithContext(ctx), &branch, id); err != nil || branch.ID == 0 {
		return nil, err
	}
	return &branch, nil
}

func (r *CatalogRepository) CreateBranch(ctx context.Context, branch *catalogDatamodel.Branch) error {
	return r.db.WithContext(ctx).Create(branch).Error
}

func (r *CatalogRepository) UpdateBranch(ctx context.Context, branch *catalogDatamodel.Branch) error {
	return r.db.WithContext(ctx).Model(branch).Updates(map[string]interface{}{
		"name":    branch.Name,
		"area_id": branch.AreaID,
	}).Error
}

func (r *CatalogRepository) DeleteBranch(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("branch_id = ?", id).Delete(&ledgerDatamodel.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("branch_id = ?", id).Delete(&ledgerDatamodel.Stock{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&catalogDatamodel.Branch{}, id)
		found = res.RowsAffected > 0
		return res.Error
	})
	return found, err
}

func (r *CatalogRepository) ListItems(ctx context.Context) ([]*catalogDatamodel.Item, error) {
	var items []*catalogDatamodel.Item
	err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error
	return items, err
}

func (r *CatalogRepository) GetItem(ctx context.Context, id int64) (*catalogDatamodel.Item, error) {
	var item catalogDatamodel.Item
	if err := first(r.db.WithContext(ctx), &item, id); err != nil || item.ID == 0 {
		return nil, err
	}
	return &item, nil
}

func (r *CatalogRepository) CreateItem(ctx context.Context, item *catalogDatamodel.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *CatalogRepository) UpdateItem(ctx context.Context, item *catalogDatamodel.Item) error {
	return r.db.WithContext(ctx).Model(item).Update("name", item.Name).Error
}

func (r *CatalogRepository) DeleteItem(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&ledgerDatamodel.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", id).Delete(&ledgerDatamodel.Stock{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&catalogDatamodel.Item{}, id)
		found = res.RowsAffected > 0
		return res.Error
	})
	return found, err
}

// first loads the row with the given primary key, leaving dst zeroed when it
// does not exist.
func first(db *gorm.DB, dst interface{}, id int64) error {
	err := db.Where("id = ?", id).First(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
