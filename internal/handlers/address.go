package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/services"
)

// AddressHandler manages the current user's addresses.
type AddressHandler struct {
	addresses *services.AddressService
}

// NewAddressHandler constructs AddressHandler.
func NewAddressHandler(addresses *services.AddressService) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

// addressRequest takes numbers as strings, the way form inputs send them.
type addressRequest struct {
	Province    string `json:"province" validate:"required"`
	City        string `json:"city" validate:"required"`
	Address     string `json:"address" validate:"required,min=8"`
	PhoneNumber string `json:"phoneNumber" validate:"required,mobile"`
	HouseNumber string `json:"houseNumber" validate:"required,number,max=9"`
	Floor       string `json:"floor" validate:"required,number,max=9"`
	Unit        string `json:"unit" validate:"required,number,max=9"`
	PostalCode  string `json:"postalCode" validate:"required,len=10,number"`
}

func (r addressRequest) input() services.AddressInput {
	// validated as short digit strings above
	houseNumber, _ := strconv.Atoi(r.HouseNumber)
	floor, _ := strconv.Atoi(r.Floor)
	unit, _ := strconv.Atoi(r.Unit)

	return services.AddressInput{
		Province:    r.Province,
		City:        r.City,
		Address:     r.Address,
		PhoneNumber: r.PhoneNumber,
		HouseNumber: houseNumber,
		Floor:       floor,
		Unit:        unit,
		PostalCode:  r.PostalCode,
	}
}

func (h *AddressHandler) List(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	addresses, err := h.addresses.List(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{"addresses": addresses})
}

func (h *AddressHandler) Create(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var req addressRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	address, err := h.addresses.Create(c.UserContext(), user.ID, req.input())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, fiber.Map{
		"message": "address created successfully",
		"address": address,
	})
}

func (h *AddressHandler) Update(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	addressID, err := parseID(c, "addressId")
	if err != nil {
		return err
	}

	var req addressRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	address, err := h.addresses.Update(c.UserContext(), user.ID, addressID, req.input())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"message": "address updated successfully",
		"address": address,
	})
}

func (h *AddressHandler) Remove(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	addressID, err := parseID(c, "addressId")
	if err != nil {
		return err
	}

	if err := h.addresses.Remove(c.UserContext(), user.ID, addressID); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "address deleted successfully")
}
