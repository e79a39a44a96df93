package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"petstore-service/internal/interfaces"
	"petstore-service/internal/models"
)

// StoreHandler handles HTTP requests for one inventory store instance
type StoreHandler struct {
	storeService interfaces.StoreService
	images       interfaces.ImageStore
}

// NewStoreHandler creates a new store API handler
func NewStoreHandler(storeService interfaces.StoreService, images interfaces.ImageStore) *StoreHandler {
	return &StoreHandler{
		storeService: storeService,
		images:       images,
	}
}

// SetupStoreRoutes sets up the HTTP routes for the store service
func (h *StoreHandler) SetupStoreRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(CORSMiddleware())

	r.GET("/", h.home)
	r.GET("/kill", h.kill)

	r.GET("/pet-types", h.listPetTypes)
	r.POST("/pet-types", RequireJSON(), h.createPetType)
	r.GET("/pet-types/:id", h.getPetType)
	r.DELETE("/pet-types/:id", h.deletePetType)

	r.GET("/pet-types/:id/pets", h.listPets)
	r.POST("/pet-types/:id/pets", RequireJSON(), h.createPet)
	r.GET("/pet-types/:id/pets/:name", h.getPet)
	r.PUT("/pet-types/:id/pets/:name", RequireJSON(), h.updatePet)
	r.DELETE("/pet-types/:id/pets/:name", h.deletePet)

	r.GET("/pictures/:filename", h.getPicture)

	return r
}

// home handles liveness requests
func (h *StoreHandler) home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pet Store API is running"})
}

// kill terminates the process immediately. Operator escape hatch, not part
// of the business contract.
func (h *StoreHandler) kill(c *gin.Context) {
	log.Warn().Msg("Kill endpoint invoked, terminating")
	os.Exit(1)
}

func (h *StoreHandler) listPetTypes(c *gin.Context) {
	filter := models.PetTypeFilter{}
	for key, values := range c.Request.URL.Query() {
		if len(values) == 0 {
			continue
		}
		value := values[0]
		switch key {
		case "id":
			filter.ID = &value
		case "type":
			filter.Type = &value
		case "family":
			filter.Family = &value
		case "genus":
			filter.Genus = &value
		case "lifespan":
			filter.Lifespan = &value
		case "hasAttribute":
			filter.HasAttribute = &value
		}
	}

	petTypes, err := h.storeService.ListPetTypes(c.Request.Context(), filter)
	if err != nil {
		Response.InternalError(c, err.Error())
		return
	}

	Response.Success(c, petTypes)
}

func (h *StoreHandler) createPetType(c *gin.Context) {
	var req models.CreatePetTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Response.BindError(c, err)
		return
	}

	petType, err := h.storeService.CreatePetType(c.Request.Context(), req.Type)
	if err != nil {
		switch {
		case models.IsValidationError(err):
			Response.ValidationError(c, "type", err.Error())
		case errors.Is(err, models.ErrDuplicate):
			Response.BusinessError(c, 400, "Duplicate Pet Type", "This pet type is already registered", models.ErrorCodeDuplicate)
		case errors.Is(err, models.ErrUnknownAnimal):
			Response.BusinessError(c, 400, "Unknown Animal", "No animal facts found for this type", models.ErrorCodeUnknownAnimal)
		default:
			Response.InternalError(c, err.Error())
		}
		return
	}

	Response.Created(c, petType)
}

func (h *StoreHandler) getPetType(c *gin.Context) {
	id, ok := h.parseTypeID(c)
	if !ok {
		return
	}

	petType, err := h.storeService.GetPetType(c.Request.Context(), id)
	if err != nil {
		h.respondTypeError(c, err)
		return
	}

	Response.Success(c, petType)
}

func (h *StoreHandler) deletePetType(c *gin.Context) {
	id, ok := h.parseTypeID(c)
	if !ok {
		return
	}

	if err := h.storeService.DeletePetType(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrTypeHasPets) {
			Response.BusinessError(c, 400, "Pet Type Not Empty", "A pet type with registered pets cannot be deleted", models.ErrorCodeTypeHasPets)
			return
		}
		h.respondTypeError(c, err)
		return
	}

	Response.NoContent(c)
}

func (h *StoreHandler) listPets(c *gin.Context) {
	id, ok := h.parseTypeID(c)
	if !ok {
		return
	}

	pets, err := h.storeService.ListPets(c.Request.Context(), id, c.Query("birthdateGT"), c.Query("birthdateLT"))
	if err != nil {
		h.respondTypeError(c, err)
		return
	}

	Response.Success(c, pets)
}

func (h *StoreHandler) createPet(c *gin.Context) {
	id, ok := h.parseTypeID(c)
	if !ok {
		return
	}

	var req models.CreatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Response.BindError(c, err)
		return
	}

	pet, err := h.storeService.CreatePet(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case models.IsValidationError(err):
			Response.ValidationError(c, "name", err.Error())
		case errors.Is(err, models.ErrDuplicate):
			Response.BusinessError(c, 400, "Duplicate Pet", "A pet with this name already exists for this type", models.ErrorCodeDuplicate)
		default:
			h.respondTypeError(c, err)
		}
		return
	}

	Response.Created(c, pet)
}

func (h *StoreHandler) getPet(c *gin.Context) {
	id, ok := h.parseTypeID(c)
	if !ok {
		return
	}

	pet, err := h.storeService.GetPet(c.Request.Context(), id, c.Param("name"))
	if err != nil {
		h.respondTypeError(c, err)
		return
	}

	Response.Success(c, pet)
}

func (h *StoreHandler) updatePet(c *gin.Context) {
	id, ok := h.parseTypeID(c)
	if !ok {
		return
	}

	var req models.UpdatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Response.BindError(c, err)
		return
	}

	pet, err := h.storeService.UpdatePet(c.Request.Context(), id, c.Param("name"), &req)
	if err != nil {
		switch {
		case models.IsValidationError(err):
			Response.ValidationError(c, "name", err.Error())
		case errors.Is(err, models.ErrDuplicate):
			Response.BusinessError(c, 400, "Duplicate Pet", "A pet with this name already exists for this type", models.ErrorCodeDuplicate)
		default:
			h.respondTypeError(c, err)
		}
		return
	}

	Response.Success(c, pet)
}

func (h *StoreHandler) deletePet(c *gin.Context) {
	id, ok := h.parseTypeID(c)
	if !ok {
		return
	}

	if err := h.storeService.DeletePet(c.Request.Context(), id, c.Param("name")); err != nil {
		h.respondTypeError(c, err)
		return
	}

	Response.NoContent(c)
}

func (h *StoreHandler) getPicture(c *gin.Context) {
	filename := c.Param("filename")

	path, ok := h.images.Path(filename)
	if !ok {
		Response.NotFound(c, "Picture")
		return
	}

	c.File(path)
}

// parseTypeID parses the pet-type id path parameter; an unparseable id is
// indistinguishable from an unknown one.
func (h *StoreHandler) parseTypeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		Response.NotFound(c, "Pet type")
		return uuid.UUID{}, false
	}
	return id, true
}

func (h *StoreHandler) respondTypeError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrNotFound) {
		Response.NotFound(c, "Resource")
		return
	}
	Response.InternalError(c, err.Error())
}
