package rest

import (
	domainDirectory "github.com/AzielCF/az-blast/domains/directory"
	domainSession "github.com/AzielCF/az-blast/domains/session"
	"github.com/AzielCF/az-blast/pkg/utils"
	"github.com/AzielCF/az-blast/usecase"
	"github.com/AzielCF/az-blast/validations"
	"github.com/gofiber/fiber/v2"
)

type Session struct {
	Service   domainSession.ISessionUsecase
	Directory domainDirectory.IDirectoryUsecase
	Selector  usecase.ISessionSelector
}

func InitRestSession(app fiber.Router, service domainSession.ISessionUsecase, directory domainDirectory.IDirectoryUsecase, selector usecase.ISessionSelector) Session {
	rest := Session{Service: service, Directory: directory, Selector: selector}
	app.Post("/sessions", rest.CreateSession)
	// La ruta fija va antes que la parametrizada
	app.Get("/sessions/optimal", rest.GetOptimalSession)
	app.Get("/sessions", rest.ListSessions)
	app.Get("/sessions/:id", rest.GetSessionStatus)
	app.Delete("/sessions/:id", rest.DestroySession)
	app.Get("/sessions/:id/contacts", rest.GetContacts)
	app.Get("/sessions/:id/groups", rest.GetGroups)
	return rest
}

func (handler *Session) CreateSession(c *fiber.Ctx) error {
	var request domainSession.CreateRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	utils.PanicIfNeeded(validations.ValidateCreateSession(c.UserContext(), request))

	status, err := handler.Service.Create(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Session created",
		Results: status,
	})
}

func (handler *Session) DestroySession(c *fiber.Ctx) error {
	err := handler.Service.Destroy(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Session destroyed",
		Results: nil,
	})
}

func (handler *Session) GetSessionStatus(c *fiber.Ctx) error {
	status, err := handler.Service.GetStatus(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Session status fetched",
		Results: status,
	})
}

func (handler *Session) ListSessions(c *fiber.Ctx) error {
	sessions, err := handler.Service.List(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Sessions fetched",
		Results: sessions,
	})
}

func (handler *Session) GetOptimalSession(c *fiber.Ctx) error {
	acct, err := handler.Selector.GetOptimalSession(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Optimal session selected",
		Results: map[string]any{
			"account_id":  acct.ID,
			"name":        acct.Name,
			"sent_today":  acct.SentToday,
			"daily_limit": acct.DailyLimit,
		},
	})
}

func (handler *Session) GetContacts(c *fiber.Ctx) error {
	contacts, err := handler.Directory.GetContacts(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Contacts fetched",
		Results: contacts,
	})
}

func (handler *Session) GetGroups(c *fiber.Ctx) error {
	groups, err := handler.Directory.GetGroups(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Groups fetched",
		Results: groups,
	})
}
