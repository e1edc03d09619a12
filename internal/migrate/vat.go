package migrate

import (
	"context"
	"time"
)

// swissVATByYear is the historical standard Swiss VAT rate per year. Unlike
// the rest of the load this is not derived from the exports: the legacy
// database never stored VAT rates, it assumed them.
var swissVATByYear = []struct {
	year int
	rate float64
}{
	{1995, 6.5}, {1996, 6.5}, {1997, 6.5}, {1998, 6.5}, {1999, 6.5}, {2000, 6.5},
	{2001, 7.6}, {2002, 7.6}, {2003, 7.6}, {2004, 7.6}, {2005, 7.6},
	{2006, 7.6}, {2007, 7.6}, {2008, 7.6}, {2009, 7.6}, {2010, 7.6},
	{2011, 8.0}, {2012, 8.0}, {2013, 8.0}, {2014, 8.0}, {2015, 8.0},
	{2016, 8.0}, {2017, 8.0},
	{2018, 7.7}, {2019, 7.7}, {2020, 7.7}, {2021, 7.7}, {2022, 7.7}, {2023, 7.7},
	{2024, 8.1},
}

var vatRateColumns = []string{"year", "rate", "createdAt", "updatedAt"}

func importVATRates(ctx context.Context, run *Run) error {
	d := run.Store.Dialect
	now := time.Now().UTC()
	rows := make([][]any, 0, len(swissVATByYear))
	for _, v := range swissVATByYear {
		rows = append(rows, []any{v.year, v.rate, d.TimeParam(now), d.TimeParam(now)})
	}

	if err := bulkInsertChunked(ctx, run, "vat_rates", vatRateColumns, rows, insertChunkSize); err != nil {
		return err
	}
	run.Log.Infof("imported %d VAT rates", len(rows))
	return nil
}
