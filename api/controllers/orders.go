package controllers

import (
	"net/http"

	"github.com/rvaldezm/orderstream/api/responses"
	"github.com/rvaldezm/orderstream/api/validators"
	"github.com/rvaldezm/orderstream/internal/orders"
	"github.com/rvaldezm/orderstream/pkg/enums"
	pkgerrors "github.com/rvaldezm/orderstream/pkg/errors"
	"github.com/rvaldezm/orderstream/pkg/logger"
)

// CreateOrder runs the full order pipeline: insert, charge, publish.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var req orders.CreateOrderRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethodCode(req.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown payment method").
					WithDetails(map[string]any{"field": "payment_method"}))
			return
		}

		result, err := svc.ProcessOrder(r.Context(), orders.ProcessOrderInput{
			CustomerID:    req.CustomerID,
			Amount:        req.Amount,
			PaymentMethod: method,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, orders.NewProcessOrderResponse(*result))
	}
}

func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orders.NewOrderResponse(*order))
	}
}

func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		limit, offset, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListOrders(r.Context(), limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orders.OrderResponse, 0, len(list))
		for _, row := range list {
			resp := orders.NewOrderResponse(row.Order)
			resp.CustomerName = row.CustomerName
			out = append(out, resp)
		}
		responses.WriteList(w, out, limit, offset, int64(len(out)))
	}
}

func ListCustomers(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		limit, offset, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListCustomers(r.Context(), limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orders.CustomerResponse, 0, len(list))
		for _, customer := range list {
			out = append(out, orders.NewCustomerResponse(customer))
		}
		responses.WriteList(w, out, limit, offset, int64(len(out)))
	}
}

func parsePageParams(r *http.Request) (int, int, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 100)
	if err != nil {
		return 0, 0, err
	}
	offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 100000)
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}
