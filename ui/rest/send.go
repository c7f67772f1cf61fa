package rest

import (
	domainSend "github.com/AzielCF/az-blast/domains/send"
	"github.com/AzielCF/az-blast/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Send struct {
	Service domainSend.ISendUsecase
}

func InitRestSend(app fiber.Router, service domainSend.ISendUsecase) Send {
	rest := Send{Service: service}
	app.Post("/sessions/:id/send/text", rest.SendText)
	app.Post("/sessions/:id/send/image", rest.SendImage)
	app.Post("/sessions/:id/send/document", rest.SendDocument)
	return rest
}

func (handler *Send) SendText(c *fiber.Ctx) error {
	var request domainSend.TextRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)
	request.AccountID = c.Params("id")

	response, err := handler.Service.SendText(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Message sent",
		Results: response,
	})
}

func (handler *Send) SendImage(c *fiber.Ctx) error {
	var request domainSend.ImageRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)
	request.AccountID = c.Params("id")

	response, err := handler.Service.SendImage(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Image sent",
		Results: response,
	})
}

func (handler *Send) SendDocument(c *fiber.Ctx) error {
	var request domainSend.DocumentRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)
	request.AccountID = c.Params("id")

	response, err := handler.Service.SendDocument(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Document sent",
		Results: response,
	})
}
