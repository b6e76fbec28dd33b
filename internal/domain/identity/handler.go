package identity

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/records/internal/platform/auth"
	"github.com/clinic/records/pkg/httpx"
	"github.com/clinic/records/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/patients", h.ListPatients)
	g.POST("/patients", h.CreatePatient)
	g.GET("/patients/:id", h.GetPatient)
	g.PUT("/patients/:id", h.UpdatePatient)
	g.PATCH("/patients/:id", h.PatchPatient)
	g.DELETE("/patients/:id", h.DeletePatient)

	g.GET("/doctors", h.ListDoctors)
	g.POST("/doctors", h.CreateDoctor)
	g.GET("/doctors/:id", h.GetDoctor)
	g.PUT("/doctors/:id", h.UpdateDoctor)
	g.PATCH("/doctors/:id", h.PatchDoctor)
	g.DELETE("/doctors/:id", h.DeleteDoctor)
}

// -- Patient Handlers --

func (h *Handler) ListPatients(c echo.Context) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	patients, total, err := h.svc.ListPatients(c.Request().Context(), caller, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg, c.Request().URL.Path))
}

func (h *Handler) GetPatient(c echo.Context) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := httpx.PathUUID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.GetPatient(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	var in PatientInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	p, err := h.svc.CreatePatient(c.Request().Context(), caller, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error { return h.updatePatient(c, false) }
func (h *Handler) PatchPatient(c echo.Context) error  { return h.updatePatient(c, true) }

func (h *Handler) updatePatient(c echo.Context, partial bool) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := httpx.PathUUID(c, "id")
	if err != nil {
		return err
	}
	var in PatientInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	p, err := h.svc.UpdatePatient(c.Request().Context(), caller, id, in, partial)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := httpx.PathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeletePatient(c.Request().Context(), caller, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Doctor Handlers --

func (h *Handler) ListDoctors(c echo.Context) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	doctors, total, err := h.svc.ListDoctors(c.Request().Context(), caller, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(doctors, total, pg, c.Request().URL.Path))
}

func (h *Handler) GetDoctor(c echo.Context) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := httpx.PathUUID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	var in DoctorInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	d, err := h.svc.CreateDoctor(c.Request().Context(), caller, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateDoctor(c echo.Context) error { return h.updateDoctor(c, false) }
func (h *Handler) PatchDoctor(c echo.Context) error  { return h.updateDoctor(c, true) }

func (h *Handler) updateDoctor(c echo.Context, partial bool) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := httpx.PathUUID(c, "id")
	if err != nil {
		return err
	}
	var in DoctorInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	d, err := h.svc.UpdateDoctor(c.Request().Context(), caller, id, in, partial)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := httpx.PathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), caller, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
