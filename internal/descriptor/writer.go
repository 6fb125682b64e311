package descriptor

import (
	"github.com/psxiso/mkpsxiso/internal/fsmodel"
	"github.com/psxiso/mkpsxiso/internal/mapped"
	"github.com/psxiso/mkpsxiso/internal/sector"
	"github.com/psxiso/mkpsxiso/internal/sectorview"
)

// pvdLBA and terminatorLBA are the fixed volume descriptor positions every
// ISO 9660/CD-XA image reserves.
const (
	pvdLBA        = 16
	terminatorLBA = 17
)

// WriteVolumeDescriptors writes the PVD at LBA 16 and the terminator at LBA
// 17. The PVD sector carries subheader SubEOL and the terminator SubEOF;
// the same subheaders are written whether or not info.XAEnabled.
func WriteVolumeDescriptors(out *mapped.Output, codec *sector.Codec, pool *sectorview.WorkerPool, info VolumeInfo, tree *fsmodel.Tree, totalLBA, pathTableBytes uint32, pt PathTableLayout) error {
	pvdBytes := BuildPVD(info, tree, totalLBA, pathTableBytes, pt)
	if err := writeSingleSector(out, codec, pool, pvdLBA, pvdBytes, sector.SubEOL); err != nil {
		return err
	}
	return writeSingleSector(out, codec, pool, terminatorLBA, BuildTerminator(), sector.SubEOF)
}

// WriteAllPathTables writes the four path tables (L primary, L secondary, M
// primary, M secondary) at the LBAs pt describes, per Open Question (c):
// strictly 4 writes, no Joliet duplication. The final sector of the last
// table (M secondary) carries subheader SubEOF.
func WriteAllPathTables(out *mapped.Output, codec *sector.Codec, pool *sectorview.WorkerPool, tree *fsmodel.Tree, pt PathTableLayout) error {
	lData := MarshalPathTable(tree, false)
	mData := MarshalPathTable(tree, true)

	writes := []struct {
		lba  uint32
		data []byte
	}{
		{pt.LPrimary, lData},
		{pt.LSecondary, lData},
		{pt.MPrimary, mData},
		{pt.MSecondary, mData},
	}

	for i, w := range writes {
		if i == len(writes)-1 {
			head := int(pt.SectorsPerTable-1) * 2048
			if head > len(w.data) {
				head = len(w.data)
			}
			if err := writeMultiSector(out, codec, pool, w.lba, pt.SectorsPerTable-1, w.data[:head], sector.SubData); err != nil {
				return err
			}
			if err := writeSingleSector(out, codec, pool, w.lba+pt.SectorsPerTable-1, w.data[head:], sector.SubEOF); err != nil {
				return err
			}
			continue
		}
		if err := writeMultiSector(out, codec, pool, w.lba, pt.SectorsPerTable, w.data, sector.SubData); err != nil {
			return err
		}
	}
	return nil
}

func writeSingleSector(out *mapped.Output, codec *sector.Codec, pool *sectorview.WorkerPool, lba uint32, data []byte, subheader uint32) error {
	return writeMultiSector(out, codec, pool, lba, 1, data, subheader)
}

func writeMultiSector(out *mapped.Output, codec *sector.Codec, pool *sectorview.WorkerPool, lba uint32, sectors uint32, data []byte, subheader uint32) error {
	region := out.View(lba, sectors)
	view := sectorview.New(codec, pool, region, lba, lba+sectors, sectorview.Form1)
	view.SetSubheader(subheader)
	if err := view.WriteMemory(data); err != nil {
		return err
	}
	return view.Close()
}
