package controllers

import (
	"net/http"

	"github.com/rvaldezm/orderstream/api/responses"
	"github.com/rvaldezm/orderstream/api/validators"
	"github.com/rvaldezm/orderstream/internal/payments"
	"github.com/rvaldezm/orderstream/pkg/db/models"
	"github.com/rvaldezm/orderstream/pkg/enums"
	pkgerrors "github.com/rvaldezm/orderstream/pkg/errors"
	"github.com/rvaldezm/orderstream/pkg/logger"
)

// ChargePayment charges an order synchronously and records the payment.
func ChargePayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var req payments.ChargeRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Charge(r.Context(), payments.ChargeInput{
			OrderRef:   req.OrderID,
			CustomerID: req.CustomerID,
			Amount:     req.Amount,
			Method:     enums.PaymentMethod(req.PaymentMethod),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := payments.NewPaymentResponse(&models.Payment{
			ID:         result.PaymentID,
			OrderRef:   req.OrderID,
			CustomerID: req.CustomerID,
			Amount:     req.Amount,
			Method:     enums.PaymentMethod(req.PaymentMethod),
			ChargedAt:  result.ChargedAt,
		})
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

func GetPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.GetPayment(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := payments.NewPaymentResponse(payment)
		responses.WriteSuccess(w, resp)
	}
}

// ListPaymentsByOrder returns every charge recorded against one order.
func ListPaymentsByOrder(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		orderID, err := validators.ParsePathID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]payments.PaymentResponse, 0, len(list))
		for i := range list {
			out = append(out, payments.NewPaymentResponse(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
