package rest

import (
	domainMessage "github.com/AzielCF/az-blast/domains/message"
	"github.com/AzielCF/az-blast/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Message struct {
	Service domainMessage.IMessageUsecase
}

func InitRestMessage(app fiber.Router, service domainMessage.IMessageUsecase) Message {
	rest := Message{Service: service}
	app.Post("/messages", rest.ScheduleMessage)
	app.Get("/messages", rest.ListMessages)
	app.Get("/messages/:id", rest.GetMessage)
	app.Delete("/messages/:id", rest.CancelMessage)
	return rest
}

func (handler *Message) ScheduleMessage(c *fiber.Ctx) error {
	var request domainMessage.ScheduleRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	msg, err := handler.Service.Schedule(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Message scheduled",
		Results: msg,
	})
}

func (handler *Message) ListMessages(c *fiber.Ctx) error {
	var request domainMessage.ListRequest
	err := c.QueryParser(&request)
	utils.PanicIfNeeded(err)

	messages, err := handler.Service.List(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Messages fetched",
		Results: messages,
	})
}

func (handler *Message) GetMessage(c *fiber.Ctx) error {
	detail, err := handler.Service.GetByID(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Message fetched",
		Results: detail,
	})
}

func (handler *Message) CancelMessage(c *fiber.Ctx) error {
	err := handler.Service.Cancel(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Message cancelled",
		Results: nil,
	})
}
