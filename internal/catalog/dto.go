package catalog

import (
	"strings"

	"github.com/frahmantamala/stock-management/internal/core/common/validation"
)

type AreaDTO struct {
	Name string `json:"name"`
}

func (dto AreaDTO) Validate() error {
	if err := validation.ValidateName("name", dto.Name); err != nil {
		return err
	}
	return nil
}

type BranchDTO struct {
	Name   string `json:"name"`
	AreaID int64  `json:"area_id"`
}

func (dto BranchDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(validation.MaxNameLength)
	v.Field("area_id", dto.AreaID).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ItemDTO struct {
	Name string `json:"name"`
}

func (dto ItemDTO) Validate() error {
	if err := validation.ValidateName("name", dto.Name); err != nil {
		return err
	}
	return nil
}

func cleanName(name string) string {
	return strings.TrimSpace(name)
}

type AreasResponse struct {
	Areas []*Area `json:"areas"`
}

type BranchesResponse struct {
	Branches []*Branch `json:"branches"`
}

type ItemsResponse struct {
	Items []*Item `json:"items"`
}
