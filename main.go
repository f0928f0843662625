/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-01 00:18:42
 * @LastEditTime: 2025-08-29 11:02:08
 * @LastEditors: 安知鱼
 */
package main

import (
	"github.com/anzhiyu-c/photasm/cmd/app"
)

func main() {
	app.Run()
}
