package handlers

import (
	"net/http"

	"dispatch_crm_go/db"
	"dispatch_crm_go/services"

	"github.com/labstack/echo/v4"
)

// AssetStatusRequest is the body of an asset status change
type AssetStatusRequest struct {
	Status string `json:"status" validate:"required,assetstatus"`
}

// LoadStatusRequest is the body of a load status change
type LoadStatusRequest struct {
	Status string `json:"status" validate:"required,loadstatus"`
}

func ListDriversHandler(c echo.Context) error {
	drivers, err := services.ListDrivers(db.DB)
	if err != nil {
		return serviceError(c, err, "Failed to fetch drivers")
	}
	return c.JSON(http.StatusOK, drivers)
}

func CreateDriverHandler(c echo.Context) error {
	var input services.DriverInput
	if err := bindAndValidate(c, &input); err != nil {
		return err
	}
	driver, err := services.CreateDriver(db.DB, input)
	if err != nil {
		return serviceError(c, err, "Failed to create driver")
	}
	return c.JSON(http.StatusCreated, driver)
}

func ListAssetsHandler(c echo.Context) error {
	assets, err := services.ListAssets(db.DB)
	if err != nil {
		return serviceError(c, err, "Failed to fetch assets")
	}
	return c.JSON(http.StatusOK, assets)
}

func CreateAssetHandler(c echo.Context) error {
	var input services.AssetInput
	if err := bindAndValidate(c, &input); err != nil {
		return err
	}
	asset, err := services.CreateAsset(db.DB, input)
	if err != nil {
		return serviceError(c, err, "Failed to create asset")
	}
	return c.JSON(http.StatusCreated, asset)
}

// UpdateAssetStatusHandler marks a truck or trailer Active, Maintenance or Inactive
func UpdateAssetStatusHandler(c echo.Context) error {
	var req AssetStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := services.UpdateAssetStatus(db.DB, c.Param("id"), req.Status); err != nil {
		return serviceError(c, err, "Failed to update asset")
	}
	return c.JSON(http.StatusOK, map[string]string{"id": c.Param("id"), "status": req.Status})
}

func ListLoadsHandler(c echo.Context) error {
	loads, err := services.ListLoads(db.DB)
	if err != nil {
		return serviceError(c, err, "Failed to fetch loads")
	}
	return c.JSON(http.StatusOK, loads)
}

func CreateLoadHandler(c echo.Context) error {
	var input services.LoadInput
	if err := bindAndValidate(c, &input); err != nil {
		return err
	}
	load, err := services.CreateLoad(db.DB, input)
	if err != nil {
		return serviceError(c, err, "Failed to create load")
	}
	return c.JSON(http.StatusCreated, load)
}

// UpdateLoadStatusHandler advances a load through its lifecycle
func UpdateLoadStatusHandler(c echo.Context) error {
	var req LoadStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := services.UpdateLoadStatus(db.DB, c.Param("id"), req.Status); err != nil {
		return serviceError(c, err, "Failed to update load")
	}
	load, err := services.GetLoad(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(c, err, "Failed to fetch load")
	}
	return c.JSON(http.StatusOK, load)
}

func ListTripsHandler(c echo.Context) error {
	trips, err := services.ListTrips(db.DB)
	if err != nil {
		return serviceError(c, err, "Failed to fetch trips")
	}
	return c.JSON(http.StatusOK, trips)
}

func CreateTripHandler(c echo.Context) error {
	var input services.TripInput
	if err := bindAndValidate(c, &input); err != nil {
		return err
	}
	trip, err := services.CreateTrip(db.DB, input)
	if err != nil {
		return serviceError(c, err, "Failed to create trip")
	}
	return c.JSON(http.StatusCreated, trip)
}

func ListStopsHandler(c echo.Context) error {
	if _, err := services.GetTrip(db.DB, c.Param("id")); err != nil {
		return serviceError(c, err, "Failed to fetch trip")
	}
	stops, err := services.ListStops(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(c, err, "Failed to fetch stops")
	}
	return c.JSON(http.StatusOK, stops)
}

func CreateStopHandler(c echo.Context) error {
	var input services.StopInput
	if err := bindAndValidate(c, &input); err != nil {
		return err
	}
	stop, err := services.CreateStop(db.DB, c.Param("id"), input)
	if err != nil {
		return serviceError(c, err, "Failed to create stop")
	}
	return c.JSON(http.StatusCreated, stop)
}
