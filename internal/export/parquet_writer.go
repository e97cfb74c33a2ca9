// Copyright (c) 2024 Neomantra Corp
//
// Parquet export for our own archive formats (spec §6.3, cmd/wt-export),
// adapted from the teacher's internal/file/parquet_writer.go: same
// GroupNode-plus-BufferedRowGroupWriter shape, retargeted from Databento's
// OhlcvMsg/Mbp0Msg wire structs onto wt.BarRecord/wt.TickRecord.

package export

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	pqfile "github.com/apache/arrow-go/v18/parquet/file"
	pqschema "github.com/apache/arrow-go/v18/parquet/schema"

	"wondertrader/store"
	"wondertrader/wt"
)

func createFile(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create '%s': %w", path, err)
	}
	return f, nil
}

// WriteBarArchiveAsParquet reads a bar (.dsb) archive and writes it as a
// single-row-group Parquet file.
func WriteBarArchiveAsParquet(sourceFile, destFile string) error {
	bars, err := store.ReadBarArchive(sourceFile)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}

	outfile, err := createFile(destFile)
	if err != nil {
		return err
	}
	defer outfile.Close()

	props := parquet.NewWriterProperties(
		parquet.WithVersion(parquet.V2_LATEST),
		parquet.WithCompression(compress.Codecs.Snappy))

	pw := pqfile.NewParquetWriter(outfile, ParquetGroupNode_BarRecord(), pqfile.WithWriterProps(props))
	defer pw.Close()

	rgw := pw.AppendBufferedRowGroup()
	for i := range bars {
		if err := ParquetWriteRow_BarRecord(rgw, &bars[i]); err != nil {
			rgw.Close()
			return err
		}
	}
	rgw.Close()

	if err := pw.FlushWithFooter(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return nil
}

// WriteTickArchiveAsParquet reads a tick (.dsb) archive and writes it as a
// single-row-group Parquet file.
func WriteTickArchiveAsParquet(sourceFile, destFile string) error {
	ticks, err := store.ReadTickArchive(sourceFile)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}

	outfile, err := createFile(destFile)
	if err != nil {
		return err
	}
	defer outfile.Close()

	props := parquet.NewWriterProperties(
		parquet.WithVersion(parquet.V2_LATEST),
		parquet.WithCompression(compress.Codecs.Snappy))

	pw := pqfile.NewParquetWriter(outfile, ParquetGroupNode_TickRecord(), pqfile.WithWriterProps(props))
	defer pw.Close()

	rgw := pw.AppendBufferedRowGroup()
	for i := range ticks {
		if err := ParquetWriteRow_TickRecord(rgw, &ticks[i]); err != nil {
			rgw.Close()
			return err
		}
	}
	rgw.Close()

	if err := pw.FlushWithFooter(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// ParquetGroupNode_BarRecord returns the Parquet schema for a bar (spec §2.1
// BarRecord): date, time, OHLC, settle, volume, turnover, open interest,
// day's add, and the session's closing bid/ask.
func ParquetGroupNode_BarRecord() *pqschema.GroupNode {
	return pqschema.MustGroup(pqschema.NewGroupNode("schema", parquet.Repetitions.Required, pqschema.FieldList{
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical("date", parquet.Repetitions.Optional, pqschema.NewIntLogicalType(32, false), parquet.Types.Int32, 0, -1)),
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical("time", parquet.Repetitions.Optional, pqschema.NewIntLogicalType(64, false), parquet.Types.Int64, 0, -1)),
		pqschema.NewFloat64Node("open", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("high", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("low", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("close", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("settle", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("volume", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("turnover", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("open_interest", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("interest_add", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("bid", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("ask", parquet.Repetitions.Optional, -1),
	}, -1))
}

func ParquetWriteRow_BarRecord(rgw pqfile.BufferedRowGroupWriter, r *wt.BarRecord) error {
	cw, _ := rgw.Column(0)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(r.Date)}, []int16{1}, nil)
	cw, _ = rgw.Column(1)
	cw.(*pqfile.Int64ColumnChunkWriter).WriteBatch([]int64{int64(r.Time)}, []int16{1}, nil)
	cw, _ = rgw.Column(2)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.Open}, []int16{1}, nil)
	cw, _ = rgw.Column(3)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.High}, []int16{1}, nil)
	cw, _ = rgw.Column(4)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.Low}, []int16{1}, nil)
	cw, _ = rgw.Column(5)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.Close}, []int16{1}, nil)
	cw, _ = rgw.Column(6)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.Settle}, []int16{1}, nil)
	cw, _ = rgw.Column(7)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.Vol}, []int16{1}, nil)
	cw, _ = rgw.Column(8)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.Money}, []int16{1}, nil)
	cw, _ = rgw.Column(9)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.Hold}, []int16{1}, nil)
	cw, _ = rgw.Column(10)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.Add}, []int16{1}, nil)
	cw, _ = rgw.Column(11)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.Bid}, []int16{1}, nil)
	cw, _ = rgw.Column(12)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.Ask}, []int16{1}, nil)
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// ParquetGroupNode_TickRecord returns the Parquet schema for a tick (spec
// §2.1 TickRecord): identity, OHLC-of-day, settle, open interest, volumes,
// turnover, the best bid/ask (depth 0), and the three timestamp fields.
func ParquetGroupNode_TickRecord() *pqschema.GroupNode {
	return pqschema.MustGroup(pqschema.NewGroupNode("schema", parquet.Repetitions.Required, pqschema.FieldList{
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeConverted("exchg", parquet.Repetitions.Optional, parquet.Types.ByteArray, pqschema.ConvertedTypes.UTF8, 0, 0, 0, -1)),
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeConverted("code", parquet.Repetitions.Optional, parquet.Types.ByteArray, pqschema.ConvertedTypes.UTF8, 0, 0, 0, -1)),
		pqschema.NewFloat64Node("price", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("open", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("high", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("low", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("settle", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("open_interest", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("total_volume", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("volume", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("total_turnover", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("turnover", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("bid_price_0", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("bid_qty_0", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("ask_price_0", parquet.Repetitions.Optional, -1),
		pqschema.NewFloat64Node("ask_qty_0", parquet.Repetitions.Optional, -1),
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical("action_date", parquet.Repetitions.Optional, pqschema.NewIntLogicalType(32, false), parquet.Types.Int32, 0, -1)),
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical("action_time", parquet.Repetitions.Optional, pqschema.NewIntLogicalType(32, false), parquet.Types.Int32, 0, -1)),
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical("trading_date", parquet.Repetitions.Optional, pqschema.NewIntLogicalType(32, false), parquet.Types.Int32, 0, -1)),
	}, -1))
}

func ParquetWriteRow_TickRecord(rgw pqfile.BufferedRowGroupWriter, r *wt.TickRecord) error {
	cw, _ := rgw.Column(0)
	cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{parquet.ByteArray(r.ExchgString())}, []int16{1}, nil)
	cw, _ = rgw.Column(1)
	cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{parquet.ByteArray(r.CodeString())}, []int16{1}, nil)
	cw, _ = rgw.Column(2)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.Price}, []int16{1}, nil)
	cw, _ = rgw.Column(3)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.Open}, []int16{1}, nil)
	cw, _ = rgw.Column(4)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.High}, []int16{1}, nil)
	cw, _ = rgw.Column(5)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.Low}, []int16{1}, nil)
	cw, _ = rgw.Column(6)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.Settle}, []int16{1}, nil)
	cw, _ = rgw.Column(7)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.OpenInterest}, []int16{1}, nil)
	cw, _ = rgw.Column(8)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.TotalVolume}, []int16{1}, nil)
	cw, _ = rgw.Column(9)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.Volume}, []int16{1}, nil)
	cw, _ = rgw.Column(10)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.TotalTurnover}, []int16{1}, nil)
	cw, _ = rgw.Column(11)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.TurnOver}, []int16{1}, nil)
	cw, _ = rgw.Column(12)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.BidPrice[0]}, []int16{1}, nil)
	cw, _ = rgw.Column(13)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.BidQty[0]}, []int16{1}, nil)
	cw, _ = rgw.Column(14)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.AskPrice[0]}, []int16{1}, nil)
	cw, _ = rgw.Column(15)
	cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{r.AskQty[0]}, []int16{1}, nil)
	cw, _ = rgw.Column(16)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(r.ActionDate)}, []int16{1}, nil)
	cw, _ = rgw.Column(17)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(r.ActionTime)}, []int16{1}, nil)
	cw, _ = rgw.Column(18)
	cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(r.TradingDate)}, []int16{1}, nil)
	return nil
}
