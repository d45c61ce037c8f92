package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/daviszhen/olap/pkg/common"
	"github.com/daviszhen/olap/pkg/storage"
	"github.com/daviszhen/olap/pkg/util"
)

var compressionDebug bool
var compressionDisabled []string

var compressionInfo = "compress sample segments with the enabled methods"
var compressionCmd = &cobra.Command{
	Use:   "compression",
	Short: compressionInfo,
	Long:  compressionInfo,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := initCommonOptions()
		if err != nil {
			return err
		}
		compressionDebug = viper.GetBool("compression.debug")
		return runCompression(cfg, compressionDebug)
	},
}

func initCompressionCmd() {
	RootCmd.AddCommand(compressionCmd)
	compressionCmd.Flags().StringSliceVar(&compressionDisabled, "disable", nil,
		"compression methods to disable, e.g. rle,zstd")
	compressionCmd.Flags().BoolVar(&compressionDebug, "debug", false, "print registry debug info")

	viper.BindPFlag("storage.disabled_compression", compressionCmd.Flags().Lookup("disable"))
	viper.BindPFlag("compression.debug", compressionCmd.Flags().Lookup("debug"))
}

type sampleSegment struct {
	name  string
	typ   common.PhyType
	width int
	data  []byte
}

func sampleSegments() []sampleSegment {
	constant := make([]byte, 4*1024)
	runs := make([]byte, 4*1024)
	ramp := make([]byte, 4*1024)
	for i := 0; i < 1024; i++ {
		binary.LittleEndian.PutUint32(constant[i*4:], 7)
		binary.LittleEndian.PutUint32(runs[i*4:], uint32(i/128))
		binary.LittleEndian.PutUint32(ramp[i*4:], uint32(i*i))
	}
	validity := bytes.Repeat([]byte{0xFF}, 256)
	validity[17] = 0xEF
	return []sampleSegment{
		{"int32 constant", common.INT32, 4, constant},
		{"int32 runs", common.INT32, 4, runs},
		{"int32 ramp", common.INT32, 4, ramp},
		{"varchar text", common.VARCHAR, 1, []byte(strings.Repeat("bit_xor over groups ", 256))},
		{"validity", common.BIT, 1, validity},
	}
}

func runCompression(cfg *util.Config, debug bool) error {
	db, err := storage.NewDBConfig(cfg)
	if err != nil {
		return err
	}
	for _, sample := range sampleSegments() {
		seg, err := storage.CompressSegment(db, sample.typ, sample.data, sample.width)
		if err != nil {
			return errors.Wrapf(err, "sample %s", sample.name)
		}
		back, err := storage.DecompressSegment(db, seg)
		if err != nil {
			return errors.Wrapf(err, "sample %s", sample.name)
		}
		if !bytes.Equal(back, sample.data) {
			return errors.AssertionFailedf("sample %s does not round trip", sample.name)
		}
		util.Info("segment",
			zap.String("sample", sample.name),
			zap.String("kind", seg.Kind().String()),
			zap.Int("raw", len(sample.data)),
			zap.Int("compressed", seg.Size()))
	}
	if debug {
		fmt.Println(db.CompressionFunctions().DebugTree())
		fmt.Println(db.CompressionFunctions().GetDebugInfo())
	}
	return nil
}
