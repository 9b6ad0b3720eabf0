package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/contract"
)

// publicApi serves the unauthenticated signing endpoints. The opaque token
// in the URL is the sole authorization; every failure mode collapses into
// the same not-available response.
type publicApi struct {
	svc contract.Service
}

func registerPublicAPI(g *echo.Group, svc contract.Service) {
	api := publicApi{svc: svc}

	pg := g.Group("/public/contracts/:token")
	pg.GET("", api.view)
	pg.POST("/sign", api.sign)
}

// agencyRemittance is the agency's own bank details, shown on invoice-mode
// contracts so the signer knows where to transfer to.
type agencyRemittance struct {
	Name          string `json:"name"`
	BankInstitute string `json:"bank_institute"`
	IBAN          string `json:"iban"`
	BIC           string `json:"bic"`
}

type publicContractView struct {
	contract.Contract
	Remittance *agencyRemittance `json:"remittance,omitempty"`
}

// Handlers

func (api *publicApi) view(ctx echo.Context) error {
	c, err := api.svc.GetByToken(ctx.Request().Context(), ctx.Param("token"))
	if err != nil {
		return collapsePublicError(err)
	}
	if c.Status == contract.StatusCancelled {
		return errContractNotAvailable
	}
	return ctx.JSON(http.StatusOK, newPublicContractView(c))
}

func (api *publicApi) sign(ctx echo.Context) error {
	var data contract.SignContract
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SignContract")
	}

	c, err := api.svc.Sign(ctx.Request().Context(), ctx.Param("token"), data)
	if err != nil {
		return collapsePublicError(err)
	}
	return ctx.JSON(http.StatusOK, newPublicContractView(c))
}

func newPublicContractView(c contract.Contract) publicContractView {
	view := publicContractView{Contract: c}
	if c.Payment.Mode == contract.ModeInvoice {
		view.Remittance = &agencyRemittance{
			Name:          core.Conf.Agency.Name,
			BankInstitute: core.Conf.Agency.BankInstitute,
			IBAN:          core.Conf.Agency.IBAN,
			BIC:           core.Conf.Agency.BIC,
		}
	}
	return view
}

// collapsePublicError hides whether a guessed link was malformed or merely
// pointed at nothing. Domain state and validation errors pass through; the
// contract's existence is already proven at that point.
func collapsePublicError(err error) error {
	switch errors.Cause(err) {
	case contract.ErrInvalidLink, contract.ErrNotFound:
		return errContractNotAvailable
	}
	return err
}
