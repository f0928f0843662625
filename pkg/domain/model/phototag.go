/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-02 11:40:55
 * @LastEditTime: 2025-08-12 09:27:44
 * @LastEditors: 安知鱼
 */
package model

// PhotoTag 是照片关键字标签的核心业务模型。
// 标签名不区分大小写：仅大小写不同的两个名字视为同一个标签。
type PhotoTag struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
