package handler

import (
	"go-retail-pos/internal/middleware"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/service"
	"go-retail-pos/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CatalogHandler struct {
	catalog    service.CatalogService
	conversion service.ConversionService
}

func NewCatalogHandler(catalog service.CatalogService, conversion service.ConversionService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, conversion: conversion}
}

// actor pulls the authenticated identity set by RequireAuth
func actor(c *fiber.Ctx) model.Actor {
	a, _ := middleware.ActorFromCtx(c)
	return a
}

// fail maps business errors onto HTTP statuses
func fail(c *fiber.Ctx, err error) error {
	return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
}

func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	if barcode := c.Query("barcode"); barcode != "" {
		products, err := h.catalog.SearchByBarcode(barcode)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
		}
		return c.JSON(products)
	}

	products, err := h.catalog.ListProducts()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(products)
}

func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	product, err := h.catalog.GetProduct(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(product)
}

func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var input service.AddProductInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.catalog.AddProduct(actor(c), input)
	if err != nil {
		return fail(c, err)
	}

	status := 201
	message := "Product created"
	if result.Status == service.StatusPending {
		status = 202
		message = "Request submitted for approval"
	}
	return c.Status(status).JSON(fiber.Map{"message": message, "data": result})
}

func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var input service.EditProductInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.catalog.EditProduct(actor(c), id, input)
	if err != nil {
		return fail(c, err)
	}

	message := "Product updated"
	if result.Status == service.StatusPending {
		message = "Request submitted for approval"
	}
	return c.JSON(fiber.Map{"message": message, "data": result})
}

func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	result, err := h.catalog.RemoveProduct(actor(c), id)
	if err != nil {
		return fail(c, err)
	}

	message := "Product deleted"
	if result.Status == service.StatusPending {
		message = "Request submitted for approval"
	}
	return c.JSON(fiber.Map{"message": message, "data": result})
}

// ConvertStock transfers quantity from a bulk product to a retail product
// POST /api/v1/products/convert
func (h *CatalogHandler) ConvertStock(c *fiber.Ctx) error {
	var input service.ConversionInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.conversion.ProposeConversion(actor(c), input)
	if err != nil {
		return fail(c, err)
	}

	message := "Stock converted"
	if result.Status == service.StatusPending {
		message = "Request submitted for approval"
	}
	return c.JSON(fiber.Map{"message": message, "data": result})
}
