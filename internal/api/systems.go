package api

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/schema"
	"github.com/gofiber/fiber/v2"
)

// listSystems returns a page of systems visible to the caller.
func (s *Server) listSystems(c *fiber.Ctx) error {
	dir := schema.SortDirection(c.Query("sort_direction", string(schema.SortDesc)))
	if _, ok := schema.ValidSortDirections[dir]; !ok {
		return fiber.NewError(fiber.StatusBadRequest, "sort_direction needs to be one of asc or desc")
	}
	page := c.QueryInt("page", 0)
	pageSize := c.QueryInt("page_size", s.cfg.PageSize)
	if page < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "page must not be negative")
	}
	if pageSize < 1 || pageSize > contract.MaxPageSize {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("page_size must be between 1 and %d", contract.MaxPageSize))
	}

	viewer := c.Get(UserHeader)
	query := schema.SystemQuery{
		IDs:           contract.SplitList(c.Query("ids")),
		SystemName:    c.Query("system_name"),
		Task:          c.Query("task"),
		Creator:       c.Query("creator"),
		Viewer:        &viewer,
		Page:          page,
		PageSize:      pageSize,
		SortField:     c.Query("sort_field", schema.SortByCreatedAt),
		SortDirection: dir,
	}
	if dataset := c.Query("dataset"); dataset != "" {
		query.Datasets = []schema.DatasetIdentity{{
			DatasetName:    dataset,
			SubDatasetName: c.Query("subdataset"),
			DatasetSplit:   c.Query("split"),
		}}
	}

	systems, total, err := s.store.FindSystems(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(schema.SystemsPage{Systems: systems, Total: total})
}

// visibleSystem loads a system and checks the caller may read it.
func (s *Server) visibleSystem(c *fiber.Ctx) (schema.System, error) {
	sys, err := s.store.GetSystem(c.UserContext(), c.Params("id"))
	if err != nil {
		return schema.System{}, err
	}
	if !sys.VisibleTo(c.Get(UserHeader)) {
		return schema.System{}, fiber.NewError(fiber.StatusForbidden, "system access denied")
	}
	return sys, nil
}

// getSystem returns one system.
func (s *Server) getSystem(c *fiber.Ctx) error {
	sys, err := s.visibleSystem(c)
	if err != nil {
		return err
	}
	return c.JSON(sys)
}

// getSystemOutputs returns up to MaxOutputsPerRequest stored outputs of a system.
func (s *Server) getSystemOutputs(c *fiber.Ctx) error {
	sys, err := s.visibleSystem(c)
	if err != nil {
		return err
	}
	outputs, err := s.store.GetSystemOutputs(c.UserContext(), sys.SystemID,
		contract.SplitList(c.Query("output_ids")), contract.MaxOutputsPerRequest)
	if err != nil {
		return err
	}
	return c.JSON(systemOutputsResponse{SystemOutputs: outputs, Total: len(outputs)})
}

// createSystem stores a submitted system and its decoded outputs.
func (s *Server) createSystem(c *fiber.Ctx) error {
	creator := c.Get(UserHeader)
	if creator == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "login required to submit systems")
	}

	var req createSystemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Metadata.DatasetName != "" {
		if req.Metadata.DatasetSplit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "dataset split is required if a dataset is chosen")
		}
		if req.CustomDataset != nil {
			return fiber.NewError(fiber.StatusBadRequest,
				"both datalab dataset and custom dataset are provided. please only select one.")
		}
	}
	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid system: %v", err))
	}

	data, err := base64.StdEncoding.DecodeString(req.SystemOutput.Data)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("file should be sent in plain text base64. (%v)", err))
	}
	if req.CustomDataset != nil {
		if _, err := base64.StdEncoding.DecodeString(req.CustomDataset.Data); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("file should be sent in plain text base64. (%v)", err))
		}
	}
	outputs, err := ParseOutputs(data, req.SystemOutput.FileType)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	sys, err := s.store.CreateSystem(c.UserContext(), req.system(creator), outputs)
	if err != nil {
		return fmt.Errorf("failed to create system: %w", err)
	}
	return c.JSON(sys)
}

// deleteSystem removes a system created by the caller.
func (s *Server) deleteSystem(c *fiber.Ctx) error {
	id := c.Params("id")
	sys, err := s.store.GetSystem(c.UserContext(), id)
	if errors.Is(err, schema.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "cannot find system_id: "+id)
	}
	if err != nil {
		return err
	}
	if user := c.Get(UserHeader); user != sys.Creator {
		return fiber.NewError(fiber.StatusForbidden, "only the creator can delete a system")
	}

	if err := s.store.DeleteSystem(c.UserContext(), id); err != nil {
		if errors.Is(err, schema.ErrNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "cannot find system_id: "+id)
		}
		return err
	}
	return c.JSON("Success")
}
