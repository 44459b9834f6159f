package catalog

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/stock-management/internal"
	catalogDatamodel "github.com/frahmantamala/stock-management/internal/core/datamodel/catalog"
)

// RepositoryAPI lookups return nil, nil when the row does not exist. Delete
// methods report whether a row was removed and cascade into stock and
// transactions.
type RepositoryAPI interface {
	ListAreas(ctx context.Context) ([]*catalogDatamodel.Area, error)
	GetArea(ctx context.Context, id int64) (*catalogDatamodel.Area, error)
	CreateArea(ctx context.Context, area *catalogDatamodel.Area) error
	UpdateArea(ctx context.Context, area *catalogDatamodel.Area) error
	DeleteArea(ctx context.Context, id int64) (bool, error)

	ListBranches(ctx context.Context, areaID *int64) ([]*Branch, error)
	GetBranch(ctx context.Context, id int64) (*catalogDatamodel.Branch, error)
	CreateBranch(ctx context.Context, branch *catalogDatamodel.Branch) error
	UpdateBranch(ctx context.Context, branch *catalogDatamodel.Branch) error
	DeleteBranch(ctx context.Context, id int64) (bool, error)

	ListItems(ctx context.Context) ([]*catalogDatamodel.Item, error)
	GetItem(ctx context.Context, id int64) (*catalogDatamodel.Item, error)
	CreateItem(ctx context.Context, item *catalogDatamodel.Item) error
	UpdateItem(ctx context.Context, item *catalogDatamodel.Item) error
	DeleteItem(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo         RepositoryAPI
	logger       *slog.Logger
	queryTimeout time.Duration
}

func NewService(repo RepositoryAPI, logger *slog.Logger, queryTimeout time.Duration) *Service {
	return &Service{
		repo:         repo,
		logger:       logger,
		queryTimeout: queryTimeout,
	}
}

func (s *Service) ListAreas(ctx context.Context) ([]*Area, error) {
	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.repo.ListAreas(ctx)
	if err != nil {
		return nil, s.storageError("list areas", err)
	}

	areas := make([]*Area, 0, len(rows))
	for _, row := range rows {
		areas = append(areas, AreaFromDataModel(row))
	}
	return areas, nil
}

func (s *Service) CreateArea(ctx context.Context, dto AreaDTO) (*Area, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row := &catalogDatamodel.Area{Name: cleanName(dto.Name)}
	if err := s.repo.CreateArea(ctx, row); err != nil {
		return nil, s.storageError("create area", err)
	}

	s.logger.Info("area created", "area_id", row.ID, "name", row.Name)
	return AreaFromDataModel(row), nil
}

func (s *Service) UpdateArea(ctx context.Context, id int64, dto AreaDTO) (*Area, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row, err := s.repo.GetArea(ctx, id)
	if err != nil {
		return nil, s.storageError("get area", err, "area_id", id)
	}
	if row == nil {
		return nil, errors.ErrAreaNotFound
	}

	row.Name = cleanName(dto.Name)
	if err := s.repo.UpdateArea(ctx, row); err != nil {
		return nil, s.storageError("update area", err, "area_id", id)
	}
	return AreaFromDataModel(row), nil
}

// DeleteArea removes the area together with its branches and their stock
// and transactions.
func (s *Service) DeleteArea(ctx context.Context, id int64) error {
	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	found, err := s.repo.DeleteArea(ctx, id)
	if err != nil {
		return s.storageError("delete area", err, "area_id", id)
	}
	if !found {
		return errors.ErrAreaNotFound
	}

	s.logger.Info("area deleted", "area_id", id, "user_id", errors.UserIDFromContext(ctx))
	return nil
}

func (s *Service) ListBranches(ctx context.Context, areaID *int64) ([]*Branch, error) {
	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	branches, err := s.repo.ListBranches(ctx, areaID)
	if err != nil {
		return nil, s.storageError("list branches", err)
	}
	if branches == nil {
		branches = []*Branch{}
	}
	return branches, nil
}

func (s *Service) CreateBranch(ctx context.Context, dto BranchDTO) (*Branch, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	area, err := s.requireArea(ctx, dto.AreaID)
	if err != nil {
		return nil, err
	}

	row := &catalogDatamodel.Branch{Name: cleanName(dto.Name), AreaID: area.ID}
	if err := s.repo.CreateBranch(ctx, row); err != nil {
		return nil, s.storageError("create branch", err)
	}

	s.logger.Info("branch created", "branch_id", row.ID, "area_id", row.AreaID)
	branch := BranchFromDataModel(row)
	branch.AreaName = area.Name
	return branch, nil
}

func (s *Service) UpdateBranch(ctx context.Context, id int64, dto BranchDTO) (*Branch, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row, err := s.repo.GetBranch(ctx, id)
	if err != nil {
		return nil, s.storageError("get branch", err, "branch_id", id)
	}
	if row == nil {
		return nil, errors.ErrBranchNotFound
	}

	area, err := s.requireArea(ctx, dto.AreaID)
	if err != nil {
		return nil, err
	}

	row.Name = cleanName(dto.Name)
	row.AreaID = area.ID
	if err := s.repo.UpdateBranch(ctx, row); err != nil {
		return nil, s.storageError("update branch", err, "branch_id", id)
	}

	branch := BranchFromDataModel(row)
	branch.AreaName = area.Name
	return branch, nil
}

func (s *Service) DeleteBranch(ctx context.Context, id int64) error {
	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	found, err := s.repo.DeleteBranch(ctx, id)
	if err != nil {
		return s.storageError("delete branch", err, "branch_id", id)
	}
	if !found {
		return errors.ErrBranchNotFound
	}

	s.logger.Info("branch deleted", "branch_id", id, "user_id", errors.UserIDFromContext(ctx))
	return nil
}

func (s *Service) ListItems(ctx context.Context) ([]*Item, error) {
	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, s.storageError("list items", err)
	}

	items := make([]*Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, ItemFromDataModel(row))
	}
	return items, nil
}

func (s *Service) CreateItem(ctx context.Context, dto ItemDTO) (*Item, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row := &catalogDatamodel.Item{Name: cleanName(dto.Name)}
	if err := s.repo.CreateItem(ctx, row); err != nil {
		return nil, s.storageError("create item", err)
	}

	s.logger.Info("item created", "item_id", row.ID, "name", row.Name)
	return ItemFromDataModel(row), nil
}

func (s *Service) UpdateItem(ctx context.Context, id int64, dto ItemDTO) (*Item, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, s.storageError("get item", err, "item_id", id)
	}
	if row == nil {
		return nil, errors.ErrItemNotFound
	}

	row.Name = cleanName(dto.Name)
	if err := s.repo.UpdateItem(ctx, row); err != nil {
		return nil, s.storageError("update item", err, "item_id", id)
	}
	return ItemFromDataModel(row), nil
}

func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	found, err := s.repo.DeleteItem(ctx, id)
	if err != nil {
		return s.storageError("delete item", err, "item_id", id)
	}
	if !found {
		return errors.ErrItemNotFound
	}

	s.logger.Info("item deleted", "item_id", id, "user_id", errors.UserIDFromContext(ctx))
	return nil
}

func (s *Service) requireArea(ctx context.Context, id int64) (*catalogDatamodel.Area, error) {
	area, err := s.repo.GetArea(ctx, id)
	if err != nil {
		return nil, s.storageError("get area", err, "area_id", id)
	}
	if area == nil {
		return nil, errors.ErrAreaNotFound
	}
	return area, nil
}

func (s *Service) storageError(op string, err error, attrs ...any) error {
	s.logger.Error("catalog storage failure", append([]any{"op", op, "error", err}, attrs...)...)
	return errors.NewUnavailableError("Storage unavailable, please retry", err)
}
